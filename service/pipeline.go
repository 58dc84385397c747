package service

import (
	"fmt"

	"github.com/Aashish23092/dualasset-analyzer/config"
	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/utils"
)

// PipelineOptions configures one analysis run.
type PipelineOptions struct {
	Extract           utils.ExtractOptions
	Thresholds        Thresholds
	DedupDecimals     int
	InvestmentAmount  float64
	ReferenceOverride *float64
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Extract: utils.ExtractOptions{
			WindowWidth:        utils.DefaultWindowWidth,
			ReferenceLookAhead: utils.DefaultReferenceLookAhead,
			ReferenceKeywords:  utils.DefaultReferenceKeywords,
			Coins:              utils.DefaultCoins,
		},
		Thresholds:       DefaultThresholds(),
		DedupDecimals:    DefaultDedupDecimals,
		InvestmentAmount: DefaultInvestmentAmount,
	}
}

// NewPipelineOptions maps the analysis block of the service config onto
// pipeline options.
func NewPipelineOptions(cfg config.AnalysisConfig) PipelineOptions {
	return PipelineOptions{
		Extract: utils.ExtractOptions{
			WindowWidth:        cfg.WindowWidth,
			ReferenceLookAhead: cfg.ReferenceLookAhead,
			ReferenceKeywords:  cfg.ReferenceKeywords,
			Coins:              cfg.Coins,
		},
		Thresholds: Thresholds{
			Near:      cfg.NearThreshold,
			Far:       cfg.FarThreshold,
			RateFloor: cfg.RateFloor,
		},
		DedupDecimals:     cfg.DedupDecimals,
		InvestmentAmount:  cfg.InvestmentAmount,
		ReferenceOverride: cfg.ReferencePriceOverride,
	}
}

// RunPipeline turns OCR fragments into an analysed, ranked result. It does no
// I/O and keeps no state between calls.
//
// Errors wrap dto.ErrNoCandidatesFound or dto.ErrEmptyAfterValidation.
func RunPipeline(fragments []string, sourceLabel string, opts PipelineOptions) (*dto.AnalysisResult, error) {
	normalized := utils.NormalizeTokens(utils.SplitGluedLabels(fragments))

	extractOpts := opts.Extract
	extractOpts.SourceLabel = sourceLabel
	extraction := utils.ExtractOffers(normalized, extractOpts)
	if len(extraction.Candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", sourceLabel, dto.ErrNoCandidatesFound)
	}

	offers, ref, err := Reconcile(extraction.Candidates, extraction.Reference, ReconcileOptions{
		DedupDecimals:     opts.DedupDecimals,
		ReferenceOverride: opts.ReferenceOverride,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourceLabel, err)
	}

	analyzed := make([]dto.AnalyzedOffer, 0, len(offers))
	for _, o := range offers {
		a := ComputeMetrics(o, ref.Price, opts.InvestmentAmount)
		a.Decision = Classify(a.DeviationPercent, a.RatePercent, opts.Thresholds)
		a.Score = Score(a.RatePercent, a.DeviationPercent)
		analyzed = append(analyzed, a)
	}

	buy, sell := Rank(analyzed)

	result := &dto.AnalysisResult{
		SourceLabel:          sourceLabel,
		Coin:                 extraction.Coin,
		Reference:            ref,
		ReferenceApproximate: ref.Approximate(),
		Offers:               analyzed,
		BuyRanking:           buy,
		SellRanking:          sell,
		BestBuy:              Headline(buy),
		BestSell:             Headline(sell),
	}
	result.Status, result.Message = describeResult(result)

	return result, nil
}
