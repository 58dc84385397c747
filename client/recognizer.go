package client

import (
	"context"
	"errors"

	"github.com/Aashish23092/dualasset-analyzer/logger"
)

// TextRecognizer turns an encoded image into text fragments in reading order.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) ([]string, error)
	Name() string
}

// FallbackRecognizer tries each recognizer in order and returns the first
// non-empty result.
type FallbackRecognizer struct {
	recognizers []TextRecognizer
}

func NewFallbackRecognizer(recognizers ...TextRecognizer) *FallbackRecognizer {
	return &FallbackRecognizer{recognizers: recognizers}
}

func (f *FallbackRecognizer) Name() string {
	if len(f.recognizers) == 0 {
		return "none"
	}
	return f.recognizers[0].Name()
}

func (f *FallbackRecognizer) Recognize(ctx context.Context, image []byte) ([]string, error) {
	var errs []error
	for _, r := range f.recognizers {
		fragments, err := r.Recognize(ctx, image)
		if err == nil && len(fragments) > 0 {
			return fragments, nil
		}
		if err != nil {
			errs = append(errs, err)
			logger.Warn(ctx, "Recognizer failed, trying next", "recognizer", r.Name(), "error", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return nil, errors.Join(errs...)
}
