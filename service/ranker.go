package service

import (
	"math"
	"sort"

	"github.com/Aashish23092/dualasset-analyzer/dto"
)

// Score combines rate and distance from the reference, ignoring direction.
func Score(rate, deviation float64) float64 {
	return rate * math.Abs(deviation)
}

// Rank splits favorable offers into buy and sell rankings, each ordered by
// descending score with ties broken by the higher rate.
func Rank(offers []dto.AnalyzedOffer) (buy, sell []dto.AnalyzedOffer) {
	for _, o := range offers {
		switch o.Decision {
		case dto.DecisionFavorableBuy:
			buy = append(buy, o)
		case dto.DecisionFavorableSell:
			sell = append(sell, o)
		}
	}
	sortByScore(buy)
	sortByScore(sell)
	return buy, sell
}

func sortByScore(offers []dto.AnalyzedOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Score != offers[j].Score {
			return offers[i].Score > offers[j].Score
		}
		return offers[i].RatePercent > offers[j].RatePercent
	})
}

// Headline returns the top of a ranking, or nil.
func Headline(ranking []dto.AnalyzedOffer) *dto.AnalyzedOffer {
	if len(ranking) == 0 {
		return nil
	}
	top := ranking[0]
	return &top
}
