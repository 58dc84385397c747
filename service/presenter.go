package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/utils"
)

// Display precision. Rounding happens here only, never inside the pipeline.
const (
	priceDecimals      = 4
	percentDecimals    = 2
	dailyYieldDecimals = 3
)

// BuildRows converts a result into rounded, table-ready rows.
func BuildRows(res *dto.AnalysisResult) []dto.OfferRow {
	if res == nil {
		return nil
	}
	rows := make([]dto.OfferRow, 0, len(res.Offers))
	for _, o := range res.Offers {
		rows = append(rows, dto.OfferRow{
			Coin:              o.Coin,
			SourceLabel:       o.SourceLabel,
			TargetPrice:       utils.RoundFloat(o.TargetPrice, priceDecimals),
			ReferencePrice:    utils.RoundFloat(res.Reference.Price, priceDecimals),
			DeviationPercent:  utils.RoundFloat(o.DeviationPercent, percentDecimals),
			RatePercent:       utils.RoundFloat(o.RatePercent, percentDecimals),
			DailyYieldPercent: utils.RoundFloat(o.DailyYieldPercent, dailyYieldDecimals),
			DailyYieldAmount:  utils.RoundFloat(o.DailyYieldAmount, dailyYieldDecimals),
			Decision:          o.Decision.Label(),
		})
	}
	return rows
}

func describeResult(res *dto.AnalysisResult) (dto.RunStatus, string) {
	var b strings.Builder
	status := dto.RunStatusFull

	switch {
	case res.BestBuy == nil && res.BestSell == nil:
		status = dto.RunStatusPartial
		fmt.Fprintf(&b, "Analysed %d offers from %s; none is strong enough right now (most are too close to or too far from the reference).",
			len(res.Offers), res.SourceLabel)
	default:
		fmt.Fprintf(&b, "Recommended offers from %s:", res.SourceLabel)
		for _, o := range []*dto.AnalyzedOffer{res.BestBuy, res.BestSell} {
			if o == nil {
				continue
			}
			fmt.Fprintf(&b, " %s @ %s -> %s (APR %s%%).",
				res.Coin, formatNumber(o.TargetPrice, priceDecimals), o.Decision.Label(), formatNumber(o.RatePercent, percentDecimals))
		}
	}

	if res.ReferenceApproximate {
		status = dto.RunStatusPartial
		fmt.Fprintf(&b, " No index price was found; deviations use the average target price %s and are approximate. Supply reference_price to correct them.",
			formatNumber(res.Reference.Price, priceDecimals))
	}

	return status, b.String()
}

// FailureMessage turns a run error into an actionable, state-specific message.
func FailureMessage(source string, err error) string {
	switch {
	case errors.Is(err, dto.ErrNoCandidatesFound):
		return fmt.Sprintf("No offers found in %s. Upload a tighter crop of the Dual Asset table only.", source)
	case errors.Is(err, dto.ErrEmptyAfterValidation):
		return fmt.Sprintf("Offers were detected in %s but none had a valid target price and APR.", source)
	case errors.Is(err, dto.ErrOCRUnavailable):
		return fmt.Sprintf("Text recognition failed for %s; retry the upload.", source)
	case errors.Is(err, dto.ErrUnsupportedFile):
		return fmt.Sprintf("%s is not a supported file; upload PNG, JPG or PDF.", source)
	default:
		return fmt.Sprintf("Analysis of %s failed.", source)
	}
}

func formatNumber(v float64, places int32) string {
	return fmt.Sprint(utils.RoundFloat(v, places))
}
