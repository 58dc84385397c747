package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aashish23092/dualasset-analyzer/dto"
)

var (
	priceShape   = regexp.MustCompile(`^-?\d+\.\d+$`)
	percentShape = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)%$`)
	plainNumber  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// DefaultReferenceKeywords mark the platform's index / mark price label.
var DefaultReferenceKeywords = []string{"index", "mark", "spot"}

const (
	DefaultWindowWidth        = 3
	DefaultReferenceLookAhead = 2
)

// ExtractOptions tunes the offer scan.
type ExtractOptions struct {
	// WindowWidth is the number of fragments (2 or 3) a price and its APR
	// may span.
	WindowWidth        int
	ReferenceLookAhead int
	ReferenceKeywords  []string
	Coins              []string
	SourceLabel        string
}

func (o ExtractOptions) withDefaults() ExtractOptions {
	if o.WindowWidth < 2 {
		o.WindowWidth = DefaultWindowWidth
	}
	if o.ReferenceLookAhead < 1 {
		o.ReferenceLookAhead = DefaultReferenceLookAhead
	}
	if len(o.ReferenceKeywords) == 0 {
		o.ReferenceKeywords = DefaultReferenceKeywords
	}
	return o
}

// ExtractionResult holds the candidates of one extraction pass.
type ExtractionResult struct {
	Candidates []dto.Offer
	Reference  *float64
	// ReferenceIndex is the fragment the reference was read from, -1 if none.
	ReferenceIndex int
	Coin           string
}

type numericToken struct {
	Value       float64
	Index       int
	Percent     bool
	PriceShaped bool
}

func parseNumeric(fragment string, index int) (numericToken, bool) {
	if m := percentShape.FindStringSubmatch(fragment); len(m) > 1 {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return numericToken{}, false
		}
		return numericToken{Value: v, Index: index, Percent: true}, true
	}

	if !plainNumber.MatchString(fragment) {
		return numericToken{}, false
	}
	v, err := strconv.ParseFloat(fragment, 64)
	if err != nil {
		return numericToken{}, false
	}
	return numericToken{Value: v, Index: index, PriceShaped: priceShape.MatchString(fragment)}, true
}

// ExtractOffers scans normalized fragments for (target price, APR) pairs and
// at most one reference price.
func ExtractOffers(fragments []string, opts ExtractOptions) ExtractionResult {
	opts = opts.withDefaults()

	result := ExtractionResult{
		ReferenceIndex: -1,
		Coin:           DetectCoin(fragments, opts.Coins),
	}

	tokens := make([]*numericToken, len(fragments))
	for i, f := range fragments {
		if tok, ok := parseNumeric(f, i); ok {
			tokens[i] = &tok
		}
	}

	if ref, idx, ok := findReference(fragments, tokens, opts); ok {
		result.Reference = &ref
		result.ReferenceIndex = idx
	}

	// The reference fragment is removed from the sequence entirely so it can
	// neither start a window nor sit inside one.
	entries := make([]*numericToken, 0, len(fragments))
	for i := range fragments {
		if i == result.ReferenceIndex {
			continue
		}
		entries = append(entries, tokens[i])
	}

	for i := 0; i < len(entries); i++ {
		head := entries[i]
		if head == nil || !head.PriceShaped {
			continue
		}

		rateAt := nearestPercent(entries, i, opts.WindowWidth)
		if rateAt < 0 {
			continue
		}

		offer := dto.Offer{
			TargetPrice:   head.Value,
			RatePercent:   entries[rateAt].Value,
			SourceLabel:   opts.SourceLabel,
			Coin:          result.Coin,
			FragmentIndex: head.Index,
		}
		consumed := rateAt
		if p, at, ok := windowProbability(entries, i, rateAt, opts.WindowWidth); ok {
			offer.ProbabilityPercent = p
			offer.HasProbability = true
			if at > consumed {
				consumed = at
			}
		}
		result.Candidates = append(result.Candidates, offer)

		// resume after the last fragment the offer used
		i = consumed
	}

	return result
}

// findReference returns the first numeric value that follows a reference
// keyword within the look-ahead window.
func findReference(fragments []string, tokens []*numericToken, opts ExtractOptions) (float64, int, bool) {
	for i, f := range fragments {
		if !containsKeyword(f, opts.ReferenceKeywords) {
			continue
		}
		for j := i + 1; j <= i+opts.ReferenceLookAhead && j < len(fragments); j++ {
			if tok := tokens[j]; tok != nil && !tok.Percent {
				return tok.Value, j, true
			}
		}
	}
	return 0, -1, false
}

// nearestPercent returns the index of the closest percent-marked entry after
// start inside the window, or -1.
func nearestPercent(entries []*numericToken, start, width int) int {
	for k := 1; k < width && start+k < len(entries); k++ {
		if tok := entries[start+k]; tok != nil && tok.Percent {
			return start + k
		}
	}
	return -1
}

// windowProbability finds a plain 0..100 value in the price's window, either
// between the price and its rate or right after the rate. A trailing value
// that opens the next offer is left alone.
func windowProbability(entries []*numericToken, priceAt, rateAt, width int) (float64, int, bool) {
	for k := priceAt + 1; k < rateAt; k++ {
		if isProbability(entries[k]) {
			return entries[k].Value, k, true
		}
	}

	next := rateAt + 1
	if next >= priceAt+width || next >= len(entries) {
		return 0, -1, false
	}
	tok := entries[next]
	if !isProbability(tok) {
		return 0, -1, false
	}
	if tok.PriceShaped && nearestPercent(entries, next, width) >= 0 {
		return 0, -1, false
	}
	return tok.Value, next, true
}

func isProbability(tok *numericToken) bool {
	return tok != nil && !tok.Percent && tok.Value >= 0 && tok.Value <= 100
}

func containsKeyword(fragment string, keywords []string) bool {
	lower := strings.ToLower(fragment)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
