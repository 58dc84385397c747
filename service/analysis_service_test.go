package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	byImage map[string][]string
	calls   int
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte) ([]string, error) {
	f.calls++
	fragments, ok := f.byImage[string(image)]
	if !ok {
		return nil, fmt.Errorf("fake: %w", dto.ErrOCRUnavailable)
	}
	return fragments, nil
}

type fakePDF struct {
	text    []string
	images  [][]byte
	textErr error
}

func (f *fakePDF) ExtractFragments(pdfData []byte) ([]string, error) { return f.text, f.textErr }
func (f *fakePDF) ExtractImages(pdfData []byte) ([][]byte, error) { return f.images, nil }

type recordingNotifier struct {
	results []dto.ImageResult
}

func (n *recordingNotifier) Notify(ctx context.Context, results []dto.ImageResult) error {
	n.results = results
	return errors.New("smtp down")
}

func newTestService(rec *fakeRecognizer, pdf PDFProcessor, notifier Notifier) *AnalysisService {
	return NewAnalysisService(rec, pdf, time.Minute, notifier, DefaultPipelineOptions())
}

func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string][]string{
		"good":  {"BTC", "Index", "100.00", "Target", "95.50", "APR", "200.00%"},
		"blank": {"Dual", "Asset"},
	}}
	notifier := &recordingNotifier{}
	svc := newTestService(rec, &fakePDF{}, notifier)

	results := svc.AnalyzeBatch(context.Background(), []dto.Upload{
		{Filename: "good.png", Data: []byte("good")},
		{Filename: "broken.png", Data: []byte("???")},
		{Filename: "blank.jpg", Data: []byte("blank")},
		{Filename: "notes.txt", Data: []byte("good")},
	}, dto.RunOptions{})

	require.Len(t, results, 4)

	assert.Equal(t, dto.RunStatusFull, results[0].Status)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, "Buy Low", results[0].Rows[0].Decision)
	assert.Equal(t, "BTC", results[0].Result.Coin)

	assert.Equal(t, dto.RunStatusEmpty, results[1].Status)
	assert.Contains(t, results[1].Message, "Text recognition failed")

	assert.Equal(t, dto.RunStatusEmpty, results[2].Status)
	assert.Contains(t, results[2].Message, "No offers found in blank.jpg")

	assert.Equal(t, dto.RunStatusEmpty, results[3].Status)
	assert.Contains(t, results[3].Message, "not a supported file")

	assert.Len(t, notifier.results, 4)
}

func TestAnalyzeUploadAppliesRunOptions(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string][]string{
		"shot": {"95.50", "200%"},
	}}
	svc := newTestService(rec, &fakePDF{}, nil)

	ref, investment := 96.0, 1000.0
	r := svc.AnalyzeUpload(context.Background(), dto.Upload{Filename: "shot.png", Data: []byte("shot")},
		dto.RunOptions{ReferencePrice: &ref, InvestmentAmount: &investment})

	require.NotNil(t, r.Result)
	assert.Equal(t, dto.ReferenceFromOverride, r.Result.Reference.Source)
	assert.Equal(t, dto.DecisionHold, r.Result.Offers[0].Decision)
	assert.InDelta(t, 1000*200/100.0/365, r.Result.Offers[0].DailyYieldAmount, 1e-9)

	// the service-wide defaults are untouched
	assert.Nil(t, svc.options.ReferenceOverride)
	assert.Equal(t, DefaultInvestmentAmount, svc.options.InvestmentAmount)
}

func TestAnalyzeUploadUsesFragmentCache(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string][]string{
		"shot": {"Index", "100.00", "95.50", "200%"},
	}}
	svc := newTestService(rec, &fakePDF{}, nil)

	up := dto.Upload{Filename: "shot.png", Data: []byte("shot")}
	first := svc.AnalyzeUpload(context.Background(), up, dto.RunOptions{})
	second := svc.AnalyzeUpload(context.Background(), dto.Upload{Filename: "copy.png", Data: []byte("shot")}, dto.RunOptions{})

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, first.Rows[0].TargetPrice, second.Rows[0].TargetPrice)
	assert.Equal(t, "copy.png", second.Result.SourceLabel)
}

func TestAnalyzeUploadPDF(t *testing.T) {
	t.Run("text layer", func(t *testing.T) {
		rec := &fakeRecognizer{}
		pdf := &fakePDF{text: []string{"Index", "100.00", "102.00", "180%"}}
		svc := newTestService(rec, pdf, nil)

		r := svc.AnalyzeUpload(context.Background(), dto.Upload{Filename: "table.PDF", Data: []byte("pdf")}, dto.RunOptions{})

		require.NotNil(t, r.Result)
		assert.Equal(t, dto.DecisionFavorableSell, r.Result.Offers[0].Decision)
		assert.Zero(t, rec.calls)
	})

	t.Run("scanned pages", func(t *testing.T) {
		rec := &fakeRecognizer{byImage: map[string][]string{
			"page1": {"Index", "100.00"},
			"page2": {"95.50", "200%"},
		}}
		pdf := &fakePDF{textErr: errors.New("no text"), images: [][]byte{[]byte("page1"), []byte("page2")}}
		svc := newTestService(rec, pdf, nil)

		r := svc.AnalyzeUpload(context.Background(), dto.Upload{Filename: "scan.pdf", Data: []byte("scan")}, dto.RunOptions{})

		require.NotNil(t, r.Result)
		assert.Equal(t, 100.0, r.Result.Reference.Price)
		assert.Equal(t, 2, rec.calls)
	})
}
