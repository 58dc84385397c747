package service

import (
	"fmt"
	"math"

	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/shopspring/decimal"
)

// DefaultDedupDecimals is the precision of the (price, rate) dedup key.
const DefaultDedupDecimals = 2

type ReconcileOptions struct {
	DedupDecimals int
	// ReferenceOverride is an operator-supplied index price, used only when
	// the screenshot yields no usable reference.
	ReferenceOverride *float64
}

type dedupKey struct {
	price string
	rate  string
}

// Reconcile drops invalid candidates, removes duplicates (first occurrence
// wins) and resolves the reference price. It fails with
// dto.ErrEmptyAfterValidation when nothing usable is left.
func Reconcile(candidates []dto.Offer, ref *float64, opts ReconcileOptions) ([]dto.Offer, dto.Reference, error) {
	valid := make([]dto.Offer, 0, len(candidates))
	for _, o := range candidates {
		if isValidOffer(o) {
			valid = append(valid, o)
		}
	}

	offers := dedupeOffers(valid, opts.DedupDecimals)
	if len(offers) == 0 {
		return nil, dto.Reference{}, fmt.Errorf("%d candidates rejected: %w", len(candidates), dto.ErrEmptyAfterValidation)
	}

	return offers, resolveReference(offers, ref, opts.ReferenceOverride), nil
}

func isValidOffer(o dto.Offer) bool {
	if !isFinite(o.TargetPrice) || !isFinite(o.RatePercent) {
		return false
	}
	return o.TargetPrice > 0 && o.RatePercent >= 0
}

func dedupeOffers(offers []dto.Offer, decimals int) []dto.Offer {
	if decimals < 0 {
		decimals = DefaultDedupDecimals
	}
	places := int32(decimals)

	seen := make(map[dedupKey]bool, len(offers))
	out := make([]dto.Offer, 0, len(offers))
	for _, o := range offers {
		key := dedupKey{
			price: decimal.NewFromFloat(o.TargetPrice).Round(places).String(),
			rate:  decimal.NewFromFloat(o.RatePercent).Round(places).String(),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

func resolveReference(offers []dto.Offer, observed, override *float64) dto.Reference {
	if observed != nil && *observed > 0 && isFinite(*observed) {
		return dto.Reference{Price: *observed, Source: dto.ReferenceFromOCR}
	}
	if override != nil && *override > 0 && isFinite(*override) {
		return dto.Reference{Price: *override, Source: dto.ReferenceFromOverride}
	}

	sum := 0.0
	for _, o := range offers {
		sum += o.TargetPrice
	}
	return dto.Reference{Price: sum / float64(len(offers)), Source: dto.ReferenceFallbackMean}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
