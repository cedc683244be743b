// Package interfaces defines service contracts for Factor-AI
package interfaces

import (
	"context"
	"time"

	"github.com/chenruby1109/factor-ai/internal/models"
)

// MarketDataClient provides access to the market/financial data provider.
// The four endpoints are independently fallible; none is assumed
// always-available.
type MarketDataClient interface {
	// GetEOD retrieves end-of-day price data, most recent bar first.
	GetEOD(ctx context.Context, symbol string, opts ...EODOption) ([]models.EODBar, error)

	// GetRealTimeQuote retrieves a live last-trade-or-bid quote.
	GetRealTimeQuote(ctx context.Context, symbol string) (*models.RealTimeQuote, error)

	// GetFundamentals retrieves the consolidated per-instrument metrics record.
	GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsAggregate, error)

	// GetFinancialStatements retrieves raw statement line items for the most
	// recent reporting period.
	GetFinancialStatements(ctx context.Context, symbol string) (*models.FinancialStatements, error)

	// GetExchangeSymbols retrieves all symbols for an exchange code.
	GetExchangeSymbols(ctx context.Context, exchange string) ([]models.Symbol, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From time.Time
	To   time.Time
}

// WithDateRange sets the date range for an EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// Notifier accepts a single formatted text message. Delivery is
// fire-and-forget; the caller does not manage retries.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
