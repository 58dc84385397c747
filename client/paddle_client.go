package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/logger"
	"github.com/Aashish23092/dualasset-analyzer/utils"
)

// PaddleClient calls a PaddleOCR serving endpoint over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

func NewPaddleClient(apiURL string) *PaddleClient {
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

func (p *PaddleClient) Name() string { return "paddleocr" }

// Recognize sends the image to the PaddleOCR server and returns the detected
// text lines split into fragments.
func (p *PaddleClient) Recognize(ctx context.Context, image []byte) ([]string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(image)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("paddleocr: %w: %w", dto.ErrOCRUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paddleocr: %w: %w", dto.ErrOCRUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("paddleocr: %w: status %d: %s", dto.ErrOCRUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("paddleocr: %w: failed to decode response: %w", dto.ErrOCRUnavailable, err)
	}

	var fragments []string
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			fragments = append(fragments, utils.SplitFragments(line.Text)...)
		}
	}

	logger.Debug(ctx, "PaddleOCR recognized text", "lines", lineCount(result), "fragments", len(fragments))
	return fragments, nil
}

func lineCount(r paddleResponse) int {
	if len(r.Results) == 0 {
		return 0
	}
	return len(r.Results[0])
}
