package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/logger"
	"github.com/Aashish23092/dualasset-analyzer/utils"
	"github.com/otiai10/gosseract/v2"
)

// TesseractClient owns one process-wide gosseract handle. The handle is
// created on first use and is not safe for concurrent use, so every call
// holds mu.
type TesseractClient struct {
	dataPath string
	language string

	once    sync.Once
	initErr error

	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: "eng",
	}
}

func (tc *TesseractClient) init() error {
	tc.once.Do(func() {
		client := gosseract.NewClient()
		if tc.dataPath != "" {
			client.SetTessdataPrefix(tc.dataPath)
		}
		if err := client.SetLanguage(tc.language); err != nil {
			client.Close()
			tc.initErr = fmt.Errorf("failed to set language: %w", err)
			return
		}
		tc.client = client
		logger.Info(context.Background(), "Tesseract client initialized", "tessdata", tc.dataPath)
	})
	return tc.initErr
}

// Recognize runs OCR on an encoded image and returns the text fragments in
// reading order.
func (tc *TesseractClient) Recognize(ctx context.Context, image []byte) ([]string, error) {
	text, err := tc.RecognizeText(ctx, image)
	if err != nil {
		return nil, err
	}
	return utils.SplitFragments(text), nil
}

func (tc *TesseractClient) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %w", dto.ErrOCRUnavailable, err)
	}
	if err := tc.init(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %w", dto.ErrOCRUnavailable, err)
	}

	tc.mu.Lock()
	text, err := tc.extractText(image)
	tc.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %w", dto.ErrOCRUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %w", dto.ErrOCRUnavailable, err)
	}
	return text, nil
}

func (tc *TesseractClient) extractText(image []byte) (string, error) {
	if tc.client == nil {
		return "", fmt.Errorf("client is closed")
	}
	if err := tc.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := tc.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

func (tc *TesseractClient) Name() string { return "tesseract" }

// Close releases the underlying handle if it was ever created.
func (tc *TesseractClient) Close() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.client != nil {
		tc.client.Close()
		tc.client = nil
		logger.Info(context.Background(), "Tesseract client closed")
	}
}
