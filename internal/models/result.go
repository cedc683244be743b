package models

import "time"

// VerdictAction labels the decision derived from the technical anchor.
type VerdictAction string

const (
	// ActionBuyNow means price sits within tolerance of its anchor and the
	// score cleared the higher bar. The actionable level is collapsed to the
	// current price to avoid a gap between verdict and level.
	ActionBuyNow VerdictAction = "buy_now"
	// ActionWait means the anchor is the level to watch.
	ActionWait VerdictAction = "wait"
)

// Verdict is the optional buy/wait decision attached to a ScoreResult.
type Verdict struct {
	Action      VerdictAction `json:"action"`
	AnchorPrice float64       `json:"anchor_price"`
	AnchorName  string        `json:"anchor_name"` // which moving average anchors the decision
}

// ScoreResult is the output record for one instrument in one scan. Created
// once per instrument, never mutated afterwards.
type ScoreResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	Price       float64     `json:"price"`
	PriceSource PriceSource `json:"price_source"`
	PriceAsOf   time.Time   `json:"price_as_of"`

	FairValue *float64 `json:"fair_value,omitempty"`

	Score   float64  `json:"score"`
	Factors []string `json:"factors"` // ordered human-readable factor tags

	Beta           float64 `json:"beta"`
	RequiredReturn float64 `json:"required_return"`
	Volatility     float64 `json:"volatility"` // annualized
	CGO            float64 `json:"cgo"`        // unrealized-gain proxy vs 100-day average cost

	StrategyTags    []string `json:"strategy_tags,omitempty"`
	FinancingAdvice string   `json:"financing_advice,omitempty"`

	Verdict *Verdict `json:"verdict,omitempty"`
}

// ValueGapPct returns the percentage by which fair value exceeds price.
// Positive means undervalued. Second return is false when no fair value
// exists.
func (r *ScoreResult) ValueGapPct() (float64, bool) {
	if r.FairValue == nil || r.Price <= 0 {
		return 0, false
	}
	return (*r.FairValue - r.Price) / r.Price * 100, true
}

// ScanSummary reports what a completed scan did. An empty qualifying set is
// a valid outcome, not a failure.
type ScanSummary struct {
	Processed int           `json:"processed"`
	Qualified int           `json:"qualified"`
	Batches   int           `json:"batches"`
	Duration  time.Duration `json:"duration"`
}

// ScanSession owns the lifecycle of a single end-to-end scan: the shared
// benchmark returns, the universe snapshot size, and the ranked results.
type ScanSession struct {
	ID               string        `json:"id" badgerhold:"key"`
	StartedAt        time.Time     `json:"started_at"`
	CompletedAt      time.Time     `json:"completed_at"`
	Universe         int           `json:"universe"`
	BenchmarkSymbol  string        `json:"benchmark_symbol"`
	BenchmarkSamples int           `json:"benchmark_samples"`
	Results          []ScoreResult `json:"results"`
	Summary          ScanSummary   `json:"summary"`
}
