package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer struct {
	name      string
	fragments []string
	err       error
	calls     int
}

func (s *stubRecognizer) Name() string { return s.name }

func (s *stubRecognizer) Recognize(ctx context.Context, image []byte) ([]string, error) {
	s.calls++
	return s.fragments, s.err
}

func TestPaddleClientRecognize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Images, 1)
		raw, err := base64.StdEncoding.DecodeString(body.Images[0])
		require.NoError(t, err)
		assert.Equal(t, "img", string(raw))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[[{"text":"Index 100.00","confidence":0.98},{"text":"95.50 200.00%","confidence":0.95}]]}`))
	}))
	defer server.Close()

	fragments, err := NewPaddleClient(server.URL).Recognize(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Index", "100.00", "95.50", "200.00%"}, fragments)
}

func TestPaddleClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewPaddleClient(server.URL).Recognize(context.Background(), []byte("img"))

	assert.ErrorIs(t, err, dto.ErrOCRUnavailable)
	assert.ErrorContains(t, err, "503")
}

func TestFallbackRecognizerUsesNextOnFailure(t *testing.T) {
	primary := &stubRecognizer{name: "paddleocr", err: errors.New("down")}
	secondary := &stubRecognizer{name: "tesseract", fragments: []string{"95.50", "200%"}}

	fragments, err := NewFallbackRecognizer(primary, secondary).Recognize(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"95.50", "200%"}, fragments)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackRecognizerStopsAtFirstSuccess(t *testing.T) {
	primary := &stubRecognizer{name: "paddleocr", fragments: []string{"x"}}
	secondary := &stubRecognizer{name: "tesseract"}

	_, err := NewFallbackRecognizer(primary, secondary).Recognize(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, secondary.calls)
}

func TestFallbackRecognizerAllFail(t *testing.T) {
	wrapped := errors.Join(dto.ErrOCRUnavailable, errors.New("no tessdata"))
	r := NewFallbackRecognizer(&stubRecognizer{name: "tesseract", err: wrapped})

	_, err := r.Recognize(context.Background(), nil)

	assert.ErrorIs(t, err, dto.ErrOCRUnavailable)
}

func TestTesseractClientHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTesseractClient("").Recognize(ctx, []byte("img"))

	assert.ErrorIs(t, err, dto.ErrOCRUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
