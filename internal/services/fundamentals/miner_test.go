package fundamentals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

type fakeClient struct {
	interfaces.MarketDataClient

	agg     *models.FundamentalsAggregate
	aggErr  error
	stmts   *models.FinancialStatements
	stmtErr error

	stmtCalls int
}

func (f *fakeClient) GetFundamentals(ctx context.Context, symbol string) (*models.FundamentalsAggregate, error) {
	return f.agg, f.aggErr
}

func (f *fakeClient) GetFinancialStatements(ctx context.Context, symbol string) (*models.FinancialStatements, error) {
	f.stmtCalls++
	if f.stmts == nil && f.stmtErr == nil {
		return &models.FinancialStatements{}, nil
	}
	return f.stmts, f.stmtErr
}

func TestMineAggregateTier(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{
			Symbol:            "2330.TW",
			MarketCap:         15_000_000_000_000,
			PriceToBook:       5.2,
			DividendRate:      13.0,
			RevenueGrowthYOY:  0.25,
			ReturnOnEquityTTM: 0.28,
			ReturnOnInvested:  0.22,
			FreeCashFlowTTM:   800_000_000_000,
		},
		stmts: &models.FinancialStatements{
			Balance: map[string]float64{"totalDebt": 900_000_000_000},
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "2330.TW", 600)

	require.NotNil(t, metrics.MarketCap)
	assert.InDelta(t, 15_000_000_000_000, *metrics.MarketCap, 1)
	require.NotNil(t, metrics.PriceToBook)
	assert.InDelta(t, 5.2, *metrics.PriceToBook, 0.01)
	require.NotNil(t, metrics.DividendRate)
	assert.InDelta(t, 13.0, *metrics.DividendRate, 0.01)
	require.NotNil(t, metrics.CapitalEfficiency)
	assert.InDelta(t, 0.22, *metrics.CapitalEfficiency, 0.001)
	require.NotNil(t, metrics.CashFlowYield)
	assert.InDelta(t, 800.0/15000.0, *metrics.CashFlowYield, 0.0001)
}

func TestMineDividendRateFromYield(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{
			Symbol:        "2412.TW",
			DividendYield: 0.04,
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "2412.TW", 120)

	require.NotNil(t, metrics.DividendRate)
	assert.InDelta(t, 4.8, *metrics.DividendRate, 0.001)
}

func TestMineRawTierDerivations(t *testing.T) {
	// aggregate misses the derived fields; the raw statements supply them
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{
			Symbol:    "1234.TW",
			MarketCap: 40_000_000_000,
		},
		stmts: &models.FinancialStatements{
			Income: map[string]float64{"operatingIncome": 3_000_000_000},
			Balance: map[string]float64{
				"shortLongTermDebtTotal": 10_000_000_000,
				"totalStockholderEquity": 25_000_000_000,
				"cashAndEquivalents":     5_000_000_000,
			},
			CashFlow: map[string]float64{
				"totalCashFromOperatingActivities": 4_000_000_000,
				"capitalExpenditures":              -1_000_000_000,
			},
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "1234.TW", 35)

	// (3e9 * 0.8) / (10e9 + 25e9 - 5e9) = 2.4 / 30 = 0.08
	require.NotNil(t, metrics.CapitalEfficiency)
	assert.InDelta(t, 0.08, *metrics.CapitalEfficiency, 0.0001)

	// (4e9 - 1e9) / 40e9 = 0.075
	require.NotNil(t, metrics.CashFlowYield)
	assert.InDelta(t, 0.075, *metrics.CashFlowYield, 0.0001)

	require.NotNil(t, metrics.TotalDebt)
	assert.InDelta(t, 10_000_000_000, *metrics.TotalDebt, 1)
}

func TestMineLabelVariants(t *testing.T) {
	// issuer uses alternate labels and positive-magnitude capex
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{Symbol: "5678.TWO", MarketCap: 40_000_000_000},
		stmts: &models.FinancialStatements{
			Income:  map[string]float64{"ebit": 3_000_000_000},
			Balance: map[string]float64{"totalEquity": 30_000_000_000},
			CashFlow: map[string]float64{
				"operatingCashFlow":   4_000_000_000,
				"capitalExpenditure":  1_000_000_000, // sign-normalized to an outflow
			},
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "5678.TWO", 35)

	// no debt or cash lines: invested capital is equity alone
	require.NotNil(t, metrics.CapitalEfficiency)
	assert.InDelta(t, 2.4/30.0, *metrics.CapitalEfficiency, 0.0001)

	require.NotNil(t, metrics.CashFlowYield)
	assert.InDelta(t, 0.075, *metrics.CashFlowYield, 0.0001)
}

func TestMineDegradesToEmptyBag(t *testing.T) {
	client := &fakeClient{
		aggErr:  errors.New("upstream 502"),
		stmtErr: errors.New("upstream 502"),
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "9999.TW", 50)

	require.NotNil(t, metrics)
	assert.Equal(t, "9999.TW", metrics.Symbol)
	assert.Nil(t, metrics.MarketCap)
	assert.Nil(t, metrics.CapitalEfficiency)
	assert.Nil(t, metrics.CashFlowYield)
}

func TestMineSkipsRawTierWhenComplete(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{
			Symbol:           "2330.TW",
			MarketCap:        15_000_000_000_000,
			ReturnOnInvested: 0.22,
			FreeCashFlowTTM:  800_000_000_000,
		},
		stmts: &models.FinancialStatements{
			Balance: map[string]float64{"totalDebt": 1},
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	m.Mine(context.Background(), "2330.TW", 600)

	// TotalDebt is still missing from the aggregate, so the raw tier runs
	assert.Equal(t, 1, client.stmtCalls)
}

type fakeMetricsCache struct {
	bags map[string]*models.FinancialMetrics
	puts int
}

func newFakeMetricsCache() *fakeMetricsCache {
	return &fakeMetricsCache{bags: make(map[string]*models.FinancialMetrics)}
}

func (f *fakeMetricsCache) GetMetrics(ctx context.Context, symbol string) (*models.FinancialMetrics, error) {
	return f.bags[symbol], nil
}

func (f *fakeMetricsCache) PutMetrics(ctx context.Context, metrics *models.FinancialMetrics) error {
	f.puts++
	f.bags[metrics.Symbol] = metrics
	return nil
}

func TestMineCachesBetweenScans(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{Symbol: "2330.TW", MarketCap: 15e12},
		stmts: &models.FinancialStatements{
			Balance: map[string]float64{"totalDebt": 900e9},
		},
	}
	cache := newFakeMetricsCache()

	m := NewMiner(client, cache, 0.20, common.NewSilentLogger())

	first := m.Mine(context.Background(), "2330.TW", 600)
	assert.Equal(t, 1, cache.puts)
	assert.False(t, first.UpdatedAt.IsZero())

	// second scan within the freshness window is served from cache
	client.agg = nil
	client.aggErr = errors.New("should not be called")
	second := m.Mine(context.Background(), "2330.TW", 600)
	require.NotNil(t, second.MarketCap)
	assert.InDelta(t, 15e12, *second.MarketCap, 1)
	assert.Equal(t, 1, cache.puts)
}

func TestMineStaleCacheRemines(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{Symbol: "2330.TW", MarketCap: 16e12},
		stmts: &models.FinancialStatements{
			Balance: map[string]float64{"totalDebt": 900e9},
		},
	}
	cache := newFakeMetricsCache()
	stale := 10 * 24 * time.Hour
	cache.bags["2330.TW"] = &models.FinancialMetrics{
		Symbol:    "2330.TW",
		UpdatedAt: time.Now().Add(-stale),
	}

	m := NewMiner(client, cache, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "2330.TW", 600)

	require.NotNil(t, metrics.MarketCap)
	assert.InDelta(t, 16e12, *metrics.MarketCap, 1)
	assert.Equal(t, 1, cache.puts)
}

func TestMineNonPositiveInvestedCapitalSkipsDerivation(t *testing.T) {
	client := &fakeClient{
		agg: &models.FundamentalsAggregate{Symbol: "8888.TW"},
		stmts: &models.FinancialStatements{
			Income: map[string]float64{"operatingIncome": 1_000_000_000},
			Balance: map[string]float64{
				"totalStockholderEquity": 1_000_000_000,
				"cashAndEquivalents":     2_000_000_000, // cash exceeds capital
			},
		},
	}

	m := NewMiner(client, nil, 0.20, common.NewSilentLogger())
	metrics := m.Mine(context.Background(), "8888.TW", 50)

	assert.Nil(t, metrics.CapitalEfficiency)
}
