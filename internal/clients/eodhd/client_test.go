package eodhd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(1000),
	)
	return client, server
}

func TestGetEOD(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/2330.TW", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "d", r.URL.Query().Get("order"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2026-08-28","open":610,"high":615,"low":608,"close":612,"adjusted_close":612,"volume":25000000},
			{"date":"2026-08-27","open":600,"high":611,"low":599,"close":610,"adjusted_close":610,"volume":22000000}
		]`))
	})
	defer server.Close()

	bars, err := client.GetEOD(context.Background(), "2330.TW")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 612.0, bars[0].Close, 0.01)
	assert.Equal(t, "2026-08-28", bars[0].Date.Format("2006-01-02"))
	assert.True(t, bars[0].Date.After(bars[1].Date), "most recent bar first")
}

func TestGetRealTimeQuote(t *testing.T) {
	t.Run("numeric payload", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/real-time/2330.TW", r.URL.Path)
			w.Write([]byte(`{"code":"2330.TW","close":612.5,"bid":612.0,"volume":1000,"timestamp":1787000000}`))
		})
		defer server.Close()

		quote, err := client.GetRealTimeQuote(context.Background(), "2330.TW")
		require.NoError(t, err)
		assert.InDelta(t, 612.5, quote.LastTrade, 0.01)
		assert.InDelta(t, 612.0, quote.BestBid, 0.01)
		assert.Equal(t, time.Unix(1787000000, 0).UTC(), quote.Timestamp)
	})

	t.Run("NA close outside trading hours", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"2330.TW","close":"NA","bid":"611.5","volume":0,"timestamp":1787000000}`))
		})
		defer server.Close()

		quote, err := client.GetRealTimeQuote(context.Background(), "2330.TW")
		require.NoError(t, err)
		assert.Equal(t, 0.0, quote.LastTrade)
		assert.InDelta(t, 611.5, quote.BestBid, 0.01)
	})

	t.Run("zero timestamp stays the zero time", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"2330.TW","close":612.5,"bid":612.0,"volume":1000,"timestamp":0}`))
		})
		defer server.Close()

		quote, err := client.GetRealTimeQuote(context.Background(), "2330.TW")
		require.NoError(t, err)
		assert.True(t, quote.Timestamp.IsZero(), "epoch must not leak into the as-of time")
	})
}

func TestGetFundamentals(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/2330.TW", r.URL.Path)
		assert.Equal(t, "Highlights,Valuation,SplitsDividends", r.URL.Query().Get("filter"))

		w.Write([]byte(`{
			"Highlights":{
				"MarketCapitalization":15000000000000,
				"DividendYield":"0.0215",
				"ReturnOnEquityTTM":0.28,
				"QuarterlyRevenueGrowthYOY":0.25,
				"FreeCashFlowTTM":"N/A",
				"ReturnOnInvestedCapitalTTM":0.22
			},
			"Valuation":{"PriceBookMRQ":5.2},
			"SplitsDividends":{"ForwardAnnualDividendRate":"13.0"}
		}`))
	})
	defer server.Close()

	agg, err := client.GetFundamentals(context.Background(), "2330.TW")
	require.NoError(t, err)
	assert.InDelta(t, 15e12, agg.MarketCap, 1)
	assert.InDelta(t, 0.0215, agg.DividendYield, 1e-6)
	assert.InDelta(t, 5.2, agg.PriceToBook, 0.01)
	assert.InDelta(t, 13.0, agg.DividendRate, 0.01)
	assert.Equal(t, 0.0, agg.FreeCashFlowTTM, "N/A maps to absent")
}

func TestGetFinancialStatements(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Financials", r.URL.Query().Get("filter"))

		w.Write([]byte(`{
			"Financials":{
				"Balance_Sheet":{"yearly":{
					"2025-12-31":{"totalStockholderEquity":"25000000000","totalDebt":0},
					"2024-12-31":{"totalStockholderEquity":"20000000000"}
				}},
				"Income_Statement":{"yearly":{
					"2025-12-31":{"operatingIncome":3000000000}
				}},
				"Cash_Flow":{"yearly":{}}
			}
		}`))
	})
	defer server.Close()

	stmts, err := client.GetFinancialStatements(context.Background(), "1234.TW")
	require.NoError(t, err)

	// latest period wins
	assert.InDelta(t, 25e9, stmts.Balance["totalStockholderEquity"], 1)
	assert.InDelta(t, 3e9, stmts.Income["operatingIncome"], 1)

	// zero-valued labels are dropped so absence stays detectable
	_, ok := stmts.Balance["totalDebt"]
	assert.False(t, ok)

	assert.Empty(t, stmts.CashFlow)
}

func TestGetExchangeSymbols(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange-symbol-list/TW", r.URL.Path)
		w.Write([]byte(`[
			{"Code":"2330","Name":"TSMC","Exchange":"TW","Type":"Common Stock"},
			{"Code":"0050","Name":"Yuanta ETF","Exchange":"TW","Type":"ETF"}
		]`))
	})
	defer server.Close()

	symbols, err := client.GetExchangeSymbols(context.Background(), "TW")
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "2330", symbols[0].Code)
	assert.Equal(t, "Common Stock", symbols[0].Type)
}

func TestAPIError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("quota exceeded"))
	})
	defer server.Close()

	_, err := client.GetEOD(context.Background(), "2330.TW")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "quota exceeded")
}

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{`1234.5`, 1234.5},
		{`"1234.5"`, 1234.5},
		{`"N/A"`, 0},
		{`"-"`, 0},
		{`""`, 0},
		{`null`, 0},
		{`"garbage"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f flexFloat64
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))
			assert.InDelta(t, tt.expected, float64(f), 1e-9)
		})
	}
}
