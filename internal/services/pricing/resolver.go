// Package pricing resolves a single current price per instrument through an
// ordered fallback chain with graceful degradation.
package pricing

import (
	"context"
	"time"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

// recentDays is the lookback for the history strategy: a handful of days is
// enough to find the last traded close over weekends and holidays.
const recentDays = 5

// Resolver implements the price fallback chain:
//
//  1. last non-missing close from the most recent few days of history
//  2. real-time last trade, then real-time best bid
//
// Any failure inside a strategy counts only against that strategy. Only full
// exhaustion of the chain surfaces, as common.ErrUnresolved.
type Resolver struct {
	client interfaces.MarketDataClient
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewResolver creates a price resolver.
func NewResolver(client interfaces.MarketDataClient, logger *common.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns a positive price or common.ErrUnresolved. It never
// propagates a transport error to its caller.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (*models.ResolvedPrice, error) {
	if price := r.fromRecentHistory(ctx, symbol); price != nil {
		return price, nil
	}
	if price := r.fromRealTime(ctx, symbol); price != nil {
		return price, nil
	}
	return nil, common.ErrUnresolved
}

func (r *Resolver) fromRecentHistory(ctx context.Context, symbol string) *models.ResolvedPrice {
	to := r.now()
	from := to.AddDate(0, 0, -recentDays)

	bars, err := r.client.GetEOD(ctx, symbol, interfaces.WithDateRange(from, to))
	if err != nil {
		r.logger.Debug().Str("symbol", symbol).Err(err).Msg("History price strategy failed")
		return nil
	}

	// Bars are most recent first; take the first non-missing close.
	for _, bar := range bars {
		if bar.Close > 0 {
			return &models.ResolvedPrice{
				Price:  bar.Close,
				Source: models.PriceSourceEOD,
				AsOf:   bar.Date,
			}
		}
	}
	return nil
}

func (r *Resolver) fromRealTime(ctx context.Context, symbol string) *models.ResolvedPrice {
	quote, err := r.client.GetRealTimeQuote(ctx, symbol)
	if err != nil {
		r.logger.Debug().Str("symbol", symbol).Err(err).Msg("Real-time price strategy failed")
		return nil
	}

	asOf := quote.Timestamp
	if asOf.IsZero() {
		asOf = r.now()
	}

	if quote.LastTrade > 0 {
		return &models.ResolvedPrice{
			Price:  quote.LastTrade,
			Source: models.PriceSourceLive,
			AsOf:   asOf,
		}
	}
	if quote.BestBid > 0 {
		return &models.ResolvedPrice{
			Price:  quote.BestBid,
			Source: models.PriceSourceBid,
			AsOf:   asOf,
		}
	}
	return nil
}

// Ensure Resolver implements PriceResolver
var _ interfaces.PriceResolver = (*Resolver)(nil)
