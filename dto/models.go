package dto

// CoinUnrecognized marks offers whose screenshot carried no known ticker.
const CoinUnrecognized = "UNRECOGNIZED"

type Decision string

const (
	DecisionFavorableBuy  Decision = "FAVORABLE_BUY"
	DecisionFavorableSell Decision = "FAVORABLE_SELL"
	DecisionHold          Decision = "HOLD"
	DecisionSkip          Decision = "SKIP"
)

// Label returns the human-facing recommendation text for the decision.
func (d Decision) Label() string {
	switch d {
	case DecisionFavorableBuy:
		return "Buy Low"
	case DecisionFavorableSell:
		return "Sell High"
	case DecisionSkip:
		return "Skip (Too far)"
	default:
		return "Hold"
	}
}

// IsFavorable reports whether the decision is actionable.
func (d Decision) IsFavorable() bool {
	return d == DecisionFavorableBuy || d == DecisionFavorableSell
}

type ReferenceSource string

const (
	ReferenceFromOCR      ReferenceSource = "ocr"
	ReferenceFromOverride ReferenceSource = "override"
	ReferenceFallbackMean ReferenceSource = "fallback_mean"
)

// Offer is one row of the Dual Asset table as recovered from OCR.
type Offer struct {
	TargetPrice        float64 `json:"target_price"`
	RatePercent        float64 `json:"rate_percent"`
	ProbabilityPercent float64 `json:"probability_percent,omitempty"`
	HasProbability     bool    `json:"-"`
	SourceLabel        string  `json:"source_label"`
	Coin               string  `json:"coin"`
	FragmentIndex      int     `json:"-"`
}

// Reference is the resolved index price a run is evaluated against.
type Reference struct {
	Price  float64         `json:"price"`
	Source ReferenceSource `json:"source"`
}

// Approximate reports whether the reference was derived rather than observed.
func (r Reference) Approximate() bool {
	return r.Source == ReferenceFallbackMean
}

type AnalyzedOffer struct {
	Offer
	DeviationPercent  float64  `json:"deviation_percent"`
	DailyYieldPercent float64  `json:"daily_yield_percent"`
	DailyYieldAmount  float64  `json:"daily_yield_amount"`
	Decision          Decision `json:"decision"`
	Score             float64  `json:"score"`
}

type RunStatus string

const (
	RunStatusEmpty   RunStatus = "empty"
	RunStatusPartial RunStatus = "partial"
	RunStatusFull    RunStatus = "full"
)

// AnalysisResult is the outcome of one analysis run (one image or one PDF).
type AnalysisResult struct {
	SourceLabel          string          `json:"source_label"`
	Coin                 string          `json:"coin"`
	Reference            Reference       `json:"reference"`
	ReferenceApproximate bool            `json:"reference_approximate"`
	Offers               []AnalyzedOffer `json:"offers"`
	BuyRanking           []AnalyzedOffer `json:"buy_ranking"`
	SellRanking          []AnalyzedOffer `json:"sell_ranking"`
	BestBuy              *AnalyzedOffer  `json:"best_buy,omitempty"`
	BestSell             *AnalyzedOffer  `json:"best_sell,omitempty"`
	Status               RunStatus       `json:"status"`
	Message              string          `json:"message"`
}

// OfferRow is the rounded, display-ready form of an AnalyzedOffer.
type OfferRow struct {
	Coin              string  `json:"coin" csv:"-"`
	SourceLabel       string  `json:"source_label" csv:"-"`
	TargetPrice       float64 `json:"target_price" csv:"target_price"`
	ReferencePrice    float64 `json:"reference_price" csv:"reference_price"`
	DeviationPercent  float64 `json:"deviation_percent" csv:"deviation_percent"`
	RatePercent       float64 `json:"rate_percent" csv:"rate_percent"`
	DailyYieldPercent float64 `json:"daily_yield_percent" csv:"daily_yield_percent"`
	DailyYieldAmount  float64 `json:"daily_yield_amount" csv:"-"`
	Decision          string  `json:"decision" csv:"decision"`
}
