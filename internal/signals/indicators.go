// Package signals provides technical indicator calculations over daily bars.
// Bars are ordered most recent first.
package signals

import (
	"github.com/chenruby1109/factor-ai/internal/models"
)

// SMA calculates the Simple Moving Average of closes for the given period.
// Returns 0 when fewer bars than the period exist.
func SMA(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}

// AverageVolume calculates average volume over a period
func AverageVolume(bars []models.EODBar, period int) int64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	var sum int64
	for i := 0; i < period; i++ {
		sum += bars[i].Volume
	}
	return sum / int64(period)
}

// VolumeRatio calculates current volume as a ratio of the period average.
func VolumeRatio(bars []models.EODBar, period int) float64 {
	if len(bars) == 0 {
		return 1.0
	}

	avg := AverageVolume(bars, period)
	if avg == 0 {
		return 1.0
	}

	return float64(bars[0].Volume) / float64(avg)
}

// DistanceToSMA calculates percentage distance from current price to an SMA.
func DistanceToSMA(currentPrice, sma float64) float64 {
	if sma == 0 {
		return 0
	}
	return ((currentPrice - sma) / sma) * 100
}

// CGO is an unrealized capital-gain proxy: how far the current price sits
// above the period average close, treated as the market's holding cost.
// Positive means most holders are in profit. Returns 0 when the window is
// too short.
func CGO(currentPrice float64, bars []models.EODBar, period int) float64 {
	cost := SMA(bars, period)
	if cost <= 0 {
		return 0
	}
	return (currentPrice - cost) / cost
}

// Anchor is the moving-average level chosen as the technical reference for
// the buy/wait verdict.
type Anchor struct {
	Price float64
	Name  string
}

// SelectAnchor picks the support anchor by a piecewise rule on how far price
// has already run above the short moving average: while price hugs the short
// average it is the actionable level, but once price has run away from it the
// medium average becomes the realistic pullback level to watch.
func SelectAnchor(currentPrice, smaShort, smaMedium float64, runawayPct float64) Anchor {
	if smaShort > 0 && DistanceToSMA(currentPrice, smaShort) <= runawayPct {
		return Anchor{Price: smaShort, Name: "sma20"}
	}
	if smaMedium > 0 {
		return Anchor{Price: smaMedium, Name: "sma60"}
	}
	return Anchor{Price: smaShort, Name: "sma20"}
}
