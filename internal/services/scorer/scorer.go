// Package scorer combines technical, value, growth, quality, and risk
// signals into one bounded score with hard safety gates ahead of any
// additive scoring.
package scorer

import (
	"fmt"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/models"
	"github.com/chenruby1109/factor-ai/internal/quant"
	"github.com/chenruby1109/factor-ai/internal/signals"
)

// Factor weight caps. Each factor contributes at most its own cap; the
// final score is the sum of fired partials.
const (
	weightFairValue    = 20
	weightLowPB        = 15
	weightSmallCap     = 10
	weightGrowth       = 15
	weightProfits      = 15
	weightCapitalEff   = 10
	weightCashYield    = 10
	weightMomentum     = 10
	weightTrendAlign   = 5
	weightVolumeSurge  = 10
	weightLowVol       = 15
	penaltyHighVol     = 10
	anchorRunawayPct   = 3 // beyond this above the short MA, the medium MA anchors
	pbValueCeiling     = 1.5
	growthFloor        = 0.20
	roeFloor           = 0.15
	cashYieldStrong    = 0.05
	volumeSurgeRatio   = 2.0
	lowVolCeiling      = 0.25
	highVolFloor       = 0.50
	cgoStrategyFloor   = 0.10
	cgoStrategyVolMax  = 0.30
)

// Input carries everything the scorer needs for one instrument. Bars are
// most recent first and already validated for minimum length.
type Input struct {
	Instrument     models.Instrument
	Name           string
	Price          models.ResolvedPrice
	Bars           []models.EODBar
	Returns        models.ReturnSeries
	Metrics        *models.FinancialMetrics
	Beta           float64
	RequiredReturn float64
}

// Scorer evaluates safety gates and additive factors under one immutable
// parameter set.
type Scorer struct {
	params common.ScanParams
}

// NewScorer creates a scorer for the given parameter set.
func NewScorer(params common.ScanParams) *Scorer {
	return &Scorer{params: params}
}

// Score produces a ScoreResult, or nil when a hard gate fails or the total
// misses the minimum. Gates are AND'ed and short-circuit: no additive score
// can rescue a gated instrument.
func (s *Scorer) Score(in Input) *models.ScoreResult {
	price := in.Price.Price
	if price <= 0 {
		return nil
	}

	sma20 := signals.SMA(in.Bars, 20)
	sma60 := signals.SMA(in.Bars, 60)

	if !s.passesGates(price, sma60, in.Metrics) {
		return nil
	}

	volatility := quant.AnnualizedVolatility(in.Returns)
	cgo := signals.CGO(price, in.Bars, 100)
	volumeRatio := signals.VolumeRatio(in.Bars, 20)

	var fairValue *float64
	if in.Metrics != nil && in.Metrics.DividendRate != nil {
		if fv, ok := quant.FairValue(*in.Metrics.DividendRate, in.RequiredReturn, s.params.DividendGrowth, s.params.DenominatorFloor); ok {
			fairValue = &fv
		}
	}

	score, factors := s.additiveScore(price, sma20, sma60, volatility, volumeRatio, fairValue, in)

	if score < s.params.MinScore {
		return nil
	}

	result := &models.ScoreResult{
		Symbol:         in.Instrument.Symbol,
		Name:           in.Name,
		Price:          price,
		PriceSource:    in.Price.Source,
		PriceAsOf:      in.Price.AsOf,
		FairValue:      fairValue,
		Score:          score,
		Factors:        factors,
		Beta:           in.Beta,
		RequiredReturn: in.RequiredReturn,
		Volatility:     volatility,
		CGO:            cgo,
	}

	if cgo > cgoStrategyFloor && volatility < cgoStrategyVolMax {
		result.StrategyTags = append(result.StrategyTags, "cgo_low_vol")
	}

	result.FinancingAdvice = s.financingAdvice(in.RequiredReturn)
	result.Verdict = s.verdict(price, sma20, sma60, score)

	return result
}

// passesGates applies the hard exclusions. A metric that is absent cannot
// fail a threshold gate — absence is an expected state and contributes no
// score instead.
func (s *Scorer) passesGates(price, sma60 float64, metrics *models.FinancialMetrics) bool {
	if price < s.params.MinPrice {
		return false
	}

	// Anti-chasing: too far above the medium-term average.
	if sma60 > 0 && signals.DistanceToSMA(price, sma60) > s.params.MaxRunupPct {
		return false
	}

	if metrics != nil {
		if metrics.CapitalEfficiency != nil && *metrics.CapitalEfficiency < s.params.MinCapitalEfficiency {
			return false
		}
		if metrics.CashFlowYield != nil && *metrics.CashFlowYield < s.params.MinCashFlowYield {
			return false
		}
	}

	return true
}

// additiveScore sums the weight-capped factor partials and collects a tag
// for each factor that fires.
func (s *Scorer) additiveScore(price, sma20, sma60, volatility, volumeRatio float64, fairValue *float64, in Input) (float64, []string) {
	score := 0.0
	var factors []string

	fire := func(weight float64, tag string) {
		score += weight
		factors = append(factors, tag)
	}

	// Value: price below the dividend-discount fair value.
	if fairValue != nil && *fairValue > price {
		fire(weightFairValue, "below dividend fair value")
	}

	m := in.Metrics
	if m != nil {
		if m.PriceToBook != nil && *m.PriceToBook > 0 && *m.PriceToBook < pbValueCeiling {
			fire(weightLowPB, fmt.Sprintf("value (P/B %.2f)", *m.PriceToBook))
		}
		if m.MarketCap != nil && *m.MarketCap > 0 && *m.MarketCap < s.params.SmallCapMax {
			fire(weightSmallCap, "small/mid cap")
		}
		if m.RevenueGrowth != nil && *m.RevenueGrowth > growthFloor {
			fire(weightGrowth, "high revenue growth")
		}
		if m.ReturnOnEquity != nil && *m.ReturnOnEquity > roeFloor {
			fire(weightProfits, "high return on equity")
		}
		if m.CapitalEfficiency != nil && *m.CapitalEfficiency > in.RequiredReturn {
			fire(weightCapitalEff, "capital efficiency above required return")
		}
		if m.CashFlowYield != nil && *m.CashFlowYield > cashYieldStrong {
			fire(weightCashYield, "strong free cash flow yield")
		}
	}

	// Trend alignment across the short and medium averages.
	if sma20 > 0 && price > sma20 {
		fire(weightMomentum, "above 20-day average")
		if sma60 > 0 && sma20 > sma60 {
			fire(weightTrendAlign, "aligned uptrend")
		}
	}

	// Participation anomaly.
	if volumeRatio >= volumeSurgeRatio {
		fire(weightVolumeSurge, "volume surge")
	}

	// Volatility: calm tape scores, erratic tape costs.
	if volatility > 0 && volatility < lowVolCeiling {
		fire(weightLowVol, "low volatility")
	} else if volatility > highVolFloor {
		score -= penaltyHighVol
	}

	return score, factors
}

// financingAdvice compares the CAPM cost of equity against the assumed cost
// of debt.
func (s *Scorer) financingAdvice(requiredReturn float64) string {
	if s.params.CostOfDebt < requiredReturn {
		return "prefer debt funding"
	}
	return "prefer equity funding"
}

// verdict derives the buy/wait label from the technical anchor. When price
// sits within tolerance of the anchor and the score clears the higher bar,
// the actionable level is collapsed to the current price so the verdict and
// the level never disagree.
func (s *Scorer) verdict(price, sma20, sma60, score float64) *models.Verdict {
	anchor := signals.SelectAnchor(price, sma20, sma60, anchorRunawayPct)
	if anchor.Price <= 0 {
		return nil
	}

	distance := signals.DistanceToSMA(price, anchor.Price)
	if distance < 0 {
		distance = -distance
	}

	if distance <= s.params.AnchorTolerancePct && score >= s.params.BuyScore {
		return &models.Verdict{
			Action:      models.ActionBuyNow,
			AnchorPrice: price,
			AnchorName:  anchor.Name,
		}
	}

	return &models.Verdict{
		Action:      models.ActionWait,
		AnchorPrice: anchor.Price,
		AnchorName:  anchor.Name,
	}
}
