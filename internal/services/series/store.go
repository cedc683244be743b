// Package series provides cached, bounded daily history windows and the
// shared benchmark return series.
package series

import (
	"context"
	"fmt"
	"time"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
	"github.com/chenruby1109/factor-ai/internal/quant"
)

// Store fetches and caches one bounded history window per instrument. A
// window shorter than the configured minimum is refused with
// common.ErrInsufficientData: beta and volatility on short samples are
// unstable and must be rejected rather than silently misleading.
type Store struct {
	client    interfaces.MarketDataClient
	cache     interfaces.SeriesCache
	logger    *common.Logger
	benchmark string

	historyDays    int
	minHistoryBars int

	now func() time.Time
}

// NewStore creates a series store. cache may be nil, in which case every
// window is fetched fresh.
func NewStore(client interfaces.MarketDataClient, cache interfaces.SeriesCache, benchmark string, historyDays, minHistoryBars int, logger *common.Logger) *Store {
	return &Store{
		client:         client,
		cache:          cache,
		logger:         logger,
		benchmark:      benchmark,
		historyDays:    historyDays,
		minHistoryBars: minHistoryBars,
		now:            time.Now,
	}
}

// Window returns the daily OHLCV window for a symbol, most recent bar first.
func (s *Store) Window(ctx context.Context, symbol string) ([]models.EODBar, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSeries(ctx, symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Series cache read failed, fetching fresh")
		} else if cached != nil && common.IsFresh(cached.UpdatedAt, common.FreshnessSeries) {
			return s.enforceMinimum(cached.Bars)
		}
	}

	to := s.now()
	from := to.AddDate(0, 0, -s.historyDays)

	bars, err := s.client.GetEOD(ctx, symbol, interfaces.WithDateRange(from, to))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	if s.cache != nil && len(bars) > 0 {
		record := &models.CachedSeries{
			Symbol:    symbol,
			Bars:      bars,
			UpdatedAt: s.now(),
		}
		if err := s.cache.PutSeries(ctx, record); err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Series cache write failed")
		}
	}

	return s.enforceMinimum(bars)
}

func (s *Store) enforceMinimum(bars []models.EODBar) ([]models.EODBar, error) {
	if len(bars) < s.minHistoryBars {
		return nil, common.ErrInsufficientData
	}
	return bars, nil
}

// BenchmarkReturns computes the shared market-index return series for one
// scan. The result is read-only for every worker and scan-scoped, not
// process-scoped.
func (s *Store) BenchmarkReturns(ctx context.Context) (models.ReturnSeries, error) {
	bars, err := s.Window(ctx, s.benchmark)
	if err != nil {
		return nil, err
	}
	return quant.Returns(bars), nil
}

// Ensure Store implements SeriesStore
var _ interfaces.SeriesStore = (*Store)(nil)
