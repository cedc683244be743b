package models

import "time"

// FinancialMetrics is a best-effort bag of per-instrument financial fields.
// Every field is independently nullable: absence is an expected state, not an
// error, and one missing field never blocks the others.
type FinancialMetrics struct {
	Symbol string `json:"symbol" badgerhold:"key"`

	MarketCap         *float64 `json:"market_cap,omitempty"`
	PriceToBook       *float64 `json:"price_to_book,omitempty"`
	DividendRate      *float64 `json:"dividend_rate,omitempty"`
	DividendYield     *float64 `json:"dividend_yield,omitempty"`
	RevenueGrowth     *float64 `json:"revenue_growth,omitempty"`
	ReturnOnEquity    *float64 `json:"return_on_equity,omitempty"`
	CapitalEfficiency *float64 `json:"capital_efficiency,omitempty"` // ROIC-like, after-tax operating profit / invested capital
	CashFlowYield     *float64 `json:"cash_flow_yield,omitempty"`    // free cash flow / market cap
	TotalDebt         *float64 `json:"total_debt,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FundamentalsAggregate is the consolidated per-instrument metrics record
// returned by the provider's aggregate endpoint. Fields mirror the provider
// payload; zero means absent.
type FundamentalsAggregate struct {
	Symbol            string  `json:"symbol"`
	MarketCap         float64 `json:"market_cap"`
	PriceToBook       float64 `json:"price_to_book"`
	DividendRate      float64 `json:"dividend_rate"`
	DividendYield     float64 `json:"dividend_yield"`
	RevenueGrowthYOY  float64 `json:"revenue_growth_yoy"`
	ReturnOnEquityTTM float64 `json:"return_on_equity_ttm"`
	ReturnOnInvested  float64 `json:"return_on_invested"`
	FreeCashFlowTTM   float64 `json:"free_cash_flow_ttm"`
}

// FinancialStatements holds raw statement line items keyed by the issuer's
// own labels. Statement schemas are not standardized across issuers, so
// consumers must probe multiple known label variants per line item.
type FinancialStatements struct {
	Symbol   string             `json:"symbol"`
	Income   map[string]float64 `json:"income"`
	Balance  map[string]float64 `json:"balance"`
	CashFlow map[string]float64 `json:"cash_flow"`
}

// Line returns the first present label variant from the given statement map.
func Line(stmt map[string]float64, labels ...string) (float64, bool) {
	for _, label := range labels {
		if v, ok := stmt[label]; ok {
			return v, true
		}
	}
	return 0, false
}
