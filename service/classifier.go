package service

import (
	"math"

	"github.com/Aashish23092/dualasset-analyzer/dto"
)

const (
	DefaultNearThreshold = 1.0
	DefaultFarThreshold  = 5.0
	DefaultRateFloor     = 150.0
)

// Thresholds drive the decision rule. All values are percentages.
type Thresholds struct {
	Near      float64
	Far       float64
	RateFloor float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Near:      DefaultNearThreshold,
		Far:       DefaultFarThreshold,
		RateFloor: DefaultRateFloor,
	}
}

// Classify labels an offer from its deviation and rate. The checks are
// ordered and the first match wins; the ranges overlap, so the order is part
// of the rule. The far bound is inclusive.
func Classify(deviation, rate float64, th Thresholds) dto.Decision {
	abs := math.Abs(deviation)

	switch {
	case abs < th.Near:
		return dto.DecisionHold
	case deviation <= -th.Near && rate > th.RateFloor:
		return dto.DecisionFavorableBuy
	case deviation >= th.Near && rate > th.RateFloor:
		return dto.DecisionFavorableSell
	case abs >= th.Far:
		return dto.DecisionSkip
	default:
		return dto.DecisionHold
	}
}
