package interfaces

import (
	"context"

	"github.com/chenruby1109/factor-ai/internal/models"
)

// PriceResolver resolves a single current price per instrument through an
// ordered fallback chain. It never fails with a transport error: exhaustion
// of the chain surfaces as common.ErrUnresolved.
type PriceResolver interface {
	Resolve(ctx context.Context, symbol string) (*models.ResolvedPrice, error)
}

// SeriesStore returns a bounded, flat daily OHLCV window per instrument.
// Windows shorter than the configured minimum surface as
// common.ErrInsufficientData.
type SeriesStore interface {
	Window(ctx context.Context, symbol string) ([]models.EODBar, error)
	BenchmarkReturns(ctx context.Context) (models.ReturnSeries, error)
}

// MetricsMiner fills a FinancialMetrics bag best-effort, field by field.
// It never fails outright; unknown fields stay nil.
type MetricsMiner interface {
	Mine(ctx context.Context, symbol string, price float64) *models.FinancialMetrics
}

// UniverseProvider enumerates the instrument universe for one scan.
type UniverseProvider interface {
	Instruments(ctx context.Context) ([]models.Instrument, error)
}
