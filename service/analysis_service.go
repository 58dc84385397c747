package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/client"
	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/logger"
	"github.com/patrickmn/go-cache"
)

// Notifier is told about every finished batch.
type Notifier interface {
	Notify(ctx context.Context, results []dto.ImageResult) error
}

type AnalysisService struct {
	recognizer   client.TextRecognizer
	pdfProcessor PDFProcessor
	fragments    *cache.Cache
	notifier     Notifier
	options      PipelineOptions
}

// NewAnalysisService wires the OCR and pipeline stages. A cacheTTL of zero
// disables the fragment cache; notifier may be nil.
func NewAnalysisService(
	recognizer client.TextRecognizer,
	pdfProcessor PDFProcessor,
	cacheTTL time.Duration,
	notifier Notifier,
	options PipelineOptions,
) *AnalysisService {
	s := &AnalysisService{
		recognizer:   recognizer,
		pdfProcessor: pdfProcessor,
		notifier:     notifier,
		options:      options,
	}
	if cacheTTL > 0 {
		s.fragments = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// AnalyzeBatch runs one independent analysis per upload, in order. A failing
// upload only fails its own entry.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, uploads []dto.Upload, opts dto.RunOptions) []dto.ImageResult {
	op := logger.StartOperation(ctx, "analyze_batch", "files", len(uploads))
	ctx = op.Context()

	results := make([]dto.ImageResult, 0, len(uploads))
	failed := 0
	for _, up := range uploads {
		r := s.AnalyzeUpload(ctx, up, opts)
		if r.Status == dto.RunStatusEmpty {
			failed++
		}
		results = append(results, r)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, results); err != nil {
			logger.Warn(ctx, "Notification failed", "error", err)
		}
	}

	op.End("failed", failed)
	return results
}

// AnalyzeUpload runs OCR and the offer pipeline for a single file.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, up dto.Upload, opts dto.RunOptions) dto.ImageResult {
	op := logger.StartOperation(ctx, "analyze_upload", "file", up.Filename, "size", len(up.Data))
	ctx = op.Context()

	if !dto.IsSupportedFile(up.Filename) {
		err := fmt.Errorf("%w: %s", dto.ErrUnsupportedFile, up.Filename)
		op.EndWithError(err)
		return failedResult(up.Filename, err)
	}

	fragments, err := s.recognize(ctx, up)
	if err != nil {
		op.EndWithError(err)
		return failedResult(up.Filename, err)
	}
	logger.Debug(ctx, "Recognized fragments", "file", up.Filename, "fragments", len(fragments))

	res, err := RunPipeline(fragments, up.Filename, s.runOptions(opts))
	if err != nil {
		op.EndWithError(err)
		return failedResult(up.Filename, err)
	}

	for _, best := range []*dto.AnalyzedOffer{res.BestBuy, res.BestSell} {
		if best != nil {
			logger.Recommendation(ctx, up.Filename, res.Coin, string(best.Decision), best.TargetPrice, best.RatePercent)
		}
	}
	if res.ReferenceApproximate {
		logger.Warn(ctx, "Reference price not found, using mean target price",
			"file", up.Filename, "reference", res.Reference.Price)
	}

	op.End("offers", len(res.Offers), "status", string(res.Status))
	return dto.ImageResult{
		Filename: up.Filename,
		Result:   res,
		Rows:     BuildRows(res),
		Status:   res.Status,
		Message:  res.Message,
	}
}

func (s *AnalysisService) runOptions(opts dto.RunOptions) PipelineOptions {
	run := s.options
	if opts.ReferencePrice != nil {
		run.ReferenceOverride = opts.ReferencePrice
	}
	if opts.InvestmentAmount != nil {
		run.InvestmentAmount = *opts.InvestmentAmount
	}
	return run
}

// recognize returns the OCR fragments for an upload, served from the cache
// when the same bytes were seen recently.
func (s *AnalysisService) recognize(ctx context.Context, up dto.Upload) ([]string, error) {
	sum := sha256.Sum256(up.Data)
	key := hex.EncodeToString(sum[:])

	if s.fragments != nil {
		if cached, ok := s.fragments.Get(key); ok {
			logger.Debug(ctx, "Fragment cache hit", "file", up.Filename)
			return append([]string(nil), cached.([]string)...), nil
		}
	}

	var (
		fragments []string
		err       error
	)
	if dto.IsPDF(up.Filename) {
		fragments, err = s.recognizePDF(ctx, up)
	} else {
		fragments, err = s.recognizer.Recognize(ctx, up.Data)
	}
	if err != nil {
		return nil, err
	}

	if s.fragments != nil {
		s.fragments.Set(key, append([]string(nil), fragments...), cache.DefaultExpiration)
	}
	return fragments, nil
}

// recognizePDF prefers the text layer and falls back to OCR of the embedded
// page images for scanned documents.
func (s *AnalysisService) recognizePDF(ctx context.Context, up dto.Upload) ([]string, error) {
	fragments, err := s.pdfProcessor.ExtractFragments(up.Data)
	if err == nil && len(fragments) > 0 {
		return fragments, nil
	}
	if err != nil {
		logger.Warn(ctx, "PDF text extraction failed, trying page images", "file", up.Filename, "error", err)
	}

	images, err := s.pdfProcessor.ExtractImages(up.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dto.ErrOCRUnavailable, err)
	}

	for i, img := range images {
		pageFragments, err := s.recognizer.Recognize(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("image %d of %s: %w", i+1, up.Filename, err)
		}
		fragments = append(fragments, pageFragments...)
	}
	return fragments, nil
}

func failedResult(filename string, err error) dto.ImageResult {
	return dto.ImageResult{
		Filename: filename,
		Status:   dto.RunStatusEmpty,
		Error:    err.Error(),
		Message:  FailureMessage(filename, err),
		Err:      err,
	}
}
