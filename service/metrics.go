package service

import "github.com/Aashish23092/dualasset-analyzer/dto"

const (
	daysPerYear = 365

	// DefaultInvestmentAmount is the stake (in the settlement coin) used for
	// the daily yield amount when the caller gives none.
	DefaultInvestmentAmount = 50.0
)

// DeviationPercent is the signed distance of target from reference, in percent.
func DeviationPercent(target, reference float64) float64 {
	return (target - reference) / reference * 100
}

// DailyYieldPercent approximates one day of the annualised rate.
func DailyYieldPercent(ratePercent float64) float64 {
	return ratePercent / daysPerYear
}

// DailyYieldAmount is the daily yield on the given investment.
func DailyYieldAmount(investment, ratePercent float64) float64 {
	return investment * ratePercent / 100 / daysPerYear
}

// ComputeMetrics enriches an offer with deviation and yield figures at full
// precision. Decision and score are filled in later.
func ComputeMetrics(o dto.Offer, reference, investment float64) dto.AnalyzedOffer {
	if investment <= 0 {
		investment = DefaultInvestmentAmount
	}
	return dto.AnalyzedOffer{
		Offer:             o,
		DeviationPercent:  DeviationPercent(o.TargetPrice, reference),
		DailyYieldPercent: DailyYieldPercent(o.RatePercent),
		DailyYieldAmount:  DailyYieldAmount(investment, o.RatePercent),
	}
}
