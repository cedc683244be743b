// Package quant provides the statistical models of the scoring pipeline:
// return series, beta/CAPM required return, and the dividend-discount fair
// value estimate.
package quant

import (
	"math"

	"github.com/chenruby1109/factor-ai/internal/models"
)

// Returns derives a daily percentage-return series from a close series.
// Bars are ordered most recent first; the result keeps that order. Bars with
// a non-positive prior close are skipped rather than producing infinities.
func Returns(bars []models.EODBar) models.ReturnSeries {
	if len(bars) < 2 {
		return nil
	}

	series := make(models.ReturnSeries, 0, len(bars)-1)
	for i := 0; i < len(bars)-1; i++ {
		prev := bars[i+1].Close
		if prev <= 0 {
			continue
		}
		series = append(series, models.ReturnPoint{
			Date:   bars[i].Date,
			Return: (bars[i].Close - prev) / prev,
		})
	}
	return series
}

// Align inner-joins two return series by calendar date and returns the
// paired observations.
func Align(a, b models.ReturnSeries) (x, y []float64) {
	byDate := make(map[string]float64, len(b))
	for _, p := range b {
		byDate[p.Date.Format("2006-01-02")] = p.Return
	}

	for _, p := range a {
		if v, ok := byDate[p.Date.Format("2006-01-02")]; ok {
			x = append(x, p.Return)
			y = append(y, v)
		}
	}
	return x, y
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the sample variance (n-1 denominator).
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

// Covariance returns the sample covariance of two equal-length slices.
func Covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	mx, my := Mean(xs), Mean(ys)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

// AnnualizedVolatility converts daily return dispersion to an annual figure
// using 252 trading days.
func AnnualizedVolatility(series models.ReturnSeries) float64 {
	if len(series) < 2 {
		return 0
	}
	xs := make([]float64, len(series))
	for i, p := range series {
		xs[i] = p.Return
	}
	return math.Sqrt(Variance(xs)) * math.Sqrt(252)
}
