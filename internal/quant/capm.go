package quant

import (
	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/models"
)

// Beta estimates market sensitivity as covariance(instrument, benchmark) /
// variance(benchmark) over date-aligned daily returns.
//
// When the aligned sample is shorter than minSamples the estimate would be
// unstable, so the computation is refused with common.ErrInsufficientData.
// A degenerate benchmark window (zero variance) yields the documented
// default of exactly 1.0 rather than a division by zero.
func Beta(instrument, benchmark models.ReturnSeries, minSamples int) (float64, error) {
	x, y := Align(instrument, benchmark)
	if len(x) < minSamples {
		return 0, common.ErrInsufficientData
	}

	benchVar := Variance(y)
	if benchVar == 0 {
		return 1.0, nil
	}

	return Covariance(x, y) / benchVar, nil
}

// RequiredReturn is the CAPM-style cost of equity: rf + beta * mrp.
func RequiredReturn(beta, riskFreeRate, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}
