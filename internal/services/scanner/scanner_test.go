package scanner

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

type fakeUniverse struct {
	instruments []models.Instrument
	err         error
}

func (f *fakeUniverse) Instruments(ctx context.Context) ([]models.Instrument, error) {
	return f.instruments, f.err
}

type fakePricing struct {
	prices map[string]float64
}

func (f *fakePricing) Resolve(ctx context.Context, symbol string) (*models.ResolvedPrice, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return nil, common.ErrUnresolved
	}
	return &models.ResolvedPrice{Price: price, Source: models.PriceSourceEOD, AsOf: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)}, nil
}

type fakeSeries struct {
	bars      map[string][]models.EODBar
	benchmark models.ReturnSeries
	benchErr  error
}

func (f *fakeSeries) Window(ctx context.Context, symbol string) ([]models.EODBar, error) {
	bars := f.bars[symbol]
	if len(bars) < 100 {
		return nil, common.ErrInsufficientData
	}
	return bars, nil
}

func (f *fakeSeries) BenchmarkReturns(ctx context.Context) (models.ReturnSeries, error) {
	return f.benchmark, f.benchErr
}

type fakeMiner struct {
	metrics map[string]*models.FinancialMetrics
}

func (f *fakeMiner) Mine(ctx context.Context, symbol string, price float64) *models.FinancialMetrics {
	if m, ok := f.metrics[symbol]; ok {
		return m
	}
	return &models.FinancialMetrics{Symbol: symbol}
}

type fakeSessions struct {
	mu    sync.Mutex
	saved []*models.ScanSession
}

func (f *fakeSessions) SaveSession(ctx context.Context, session *models.ScanSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, session)
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, id string) (*models.ScanSession, error) {
	return nil, nil
}

func (f *fakeSessions) ListSessions(ctx context.Context, limit int) ([]*models.ScanSession, error) {
	return nil, nil
}

func ptr(v float64) *float64 { return &v }

// buildFixture creates n instruments tracking the benchmark closely enough
// for beta, with strong fundamentals so every resolvable one qualifies.
func buildFixture(n int) (*fakeUniverse, *fakePricing, *fakeSeries, *fakeMiner) {
	base := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mkBars := func(start float64) []models.EODBar {
		bars := make([]models.EODBar, 120)
		price := start
		for i := range bars {
			bars[i] = models.EODBar{Date: base.AddDate(0, 0, -i), Close: price, Volume: 1_000_000}
			// mild oscillation going back in time
			if i%2 == 0 {
				price *= 0.999
			} else {
				price *= 1.001
			}
		}
		return bars
	}

	uni := &fakeUniverse{}
	pricing := &fakePricing{prices: make(map[string]float64)}
	series := &fakeSeries{bars: make(map[string][]models.EODBar)}
	miner := &fakeMiner{metrics: make(map[string]*models.FinancialMetrics)}

	for i := 0; i < n; i++ {
		symbol := fmt.Sprintf("%04d.TW", 1000+i)
		uni.instruments = append(uni.instruments, models.Instrument{
			Symbol:  symbol,
			Name:    fmt.Sprintf("Issuer %d", i),
			Segment: models.SegmentListed,
		})
		bars := mkBars(100)
		pricing.prices[symbol] = bars[0].Close
		series.bars[symbol] = bars
		miner.metrics[symbol] = &models.FinancialMetrics{
			Symbol:            symbol,
			MarketCap:         ptr(10_000_000_000),
			PriceToBook:       ptr(1.0),
			RevenueGrowth:     ptr(0.30),
			ReturnOnEquity:    ptr(0.20),
			CapitalEfficiency: ptr(0.09),
			CashFlowYield:     ptr(0.06),
		}
	}

	// benchmark mirrors the instruments' oscillation so alignment is full
	benchBars := mkBars(10000)
	series.benchmark = benchmarkReturns(benchBars)

	return uni, pricing, series, miner
}

func benchmarkReturns(bars []models.EODBar) models.ReturnSeries {
	series := make(models.ReturnSeries, 0, len(bars)-1)
	for i := 0; i < len(bars)-1; i++ {
		prev := bars[i+1].Close
		series = append(series, models.ReturnPoint{
			Date:   bars[i].Date,
			Return: (bars[i].Close - prev) / prev,
		})
	}
	return series
}

func testParams() common.ScanParams {
	params := common.NewDefaultConfig().Scan
	params.BatchSize = 7
	params.Workers = 4
	params.BatchPause = "0s"
	return params
}

func newTestOrchestrator(params common.ScanParams, uni *fakeUniverse, pricing *fakePricing, series *fakeSeries, miner *fakeMiner, sessions interfaces.SessionStore) *Orchestrator {
	o := NewOrchestrator(params, uni, pricing, series, miner, sessions, "TWII.INDX", common.NewSilentLogger())
	o.pause = func(time.Duration) {}
	return o
}

func TestRunProducesRankedSession(t *testing.T) {
	uni, pricing, series, miner := buildFixture(20)
	sessions := &fakeSessions{}

	o := newTestOrchestrator(testParams(), uni, pricing, series, miner, sessions)
	session, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, session.Universe)
	assert.Equal(t, 20, session.Summary.Processed)
	assert.Equal(t, 20, session.Summary.Qualified)
	assert.Equal(t, 3, session.Summary.Batches) // 7 + 7 + 6
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.CompletedAt.IsZero())

	// descending score within the tag tiers
	for i := 1; i < len(session.Results); i++ {
		prev, cur := session.Results[i-1], session.Results[i]
		prevTagged := len(prev.StrategyTags) > 0
		curTagged := len(cur.StrategyTags) > 0
		if prevTagged == curTagged {
			assert.GreaterOrEqual(t, prev.Score, cur.Score)
		} else {
			assert.True(t, prevTagged, "tagged results must rank first")
		}
	}

	require.Len(t, sessions.saved, 1)
	assert.Equal(t, session.ID, sessions.saved[0].ID)
}

func TestRunWorkerCountDoesNotChangeResults(t *testing.T) {
	uni, pricing, series, miner := buildFixture(25)

	run := func(workers int) map[string]float64 {
		params := testParams()
		params.Workers = workers
		o := newTestOrchestrator(params, uni, pricing, series, miner, nil)
		session, err := o.Run(context.Background())
		require.NoError(t, err)
		scores := make(map[string]float64, len(session.Results))
		for _, r := range session.Results {
			scores[r.Symbol] = r.Score
		}
		return scores
	}

	assert.Equal(t, run(1), run(8))
}

func TestRunReplayOverFrozenInputsIsIdentical(t *testing.T) {
	uni, pricing, series, miner := buildFixture(20)

	run := func() []models.ScoreResult {
		o := newTestOrchestrator(testParams(), uni, pricing, series, miner, nil)
		session, err := o.Run(context.Background())
		require.NoError(t, err)
		return session.Results
	}

	assert.Equal(t, run(), run(), "the same configuration over the same inputs must replay identically")
}

func TestRunSkipsUnresolvableInstruments(t *testing.T) {
	uni, pricing, series, miner := buildFixture(10)

	// three degrade for different reasons
	delete(pricing.prices, "1001.TW")                    // unresolvable price
	delete(series.bars, "1002.TW")                       // no history at all
	series.bars["1003.TW"] = series.bars["1003.TW"][:30] // recently listed, short window

	o := newTestOrchestrator(testParams(), uni, pricing, series, miner, nil)
	session, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, session.Summary.Processed)
	assert.Equal(t, 7, session.Summary.Qualified)
	for _, r := range session.Results {
		assert.NotContains(t, []string{"1001.TW", "1002.TW", "1003.TW"}, r.Symbol)
	}
}

func TestRunBenchmarkFailureCompletesEmpty(t *testing.T) {
	uni, pricing, series, miner := buildFixture(5)
	series.benchmark = nil
	series.benchErr = assert.AnError

	o := newTestOrchestrator(testParams(), uni, pricing, series, miner, nil)
	session, err := o.Run(context.Background())
	require.NoError(t, err, "a failed benchmark degrades, it does not abort")

	assert.Equal(t, 5, session.Summary.Processed)
	assert.Equal(t, 0, session.Summary.Qualified)
	assert.Empty(t, session.Results)
}

func TestRunUniverseFailureAborts(t *testing.T) {
	uni := &fakeUniverse{err: assert.AnError}
	o := newTestOrchestrator(testParams(), uni, &fakePricing{}, &fakeSeries{}, &fakeMiner{}, nil)

	_, err := o.Run(context.Background())
	assert.Error(t, err)
}

func TestRunEmptyResultIsValid(t *testing.T) {
	uni, pricing, series, miner := buildFixture(5)
	// every price vanishes
	pricing.prices = map[string]float64{}

	o := newTestOrchestrator(testParams(), uni, pricing, series, miner, nil)
	session, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, session.Summary.Qualified)
	assert.Equal(t, 5, session.Summary.Processed)
}

func TestRunHonorsCancellation(t *testing.T) {
	uni, pricing, series, miner := buildFixture(30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(testParams(), uni, pricing, series, miner, nil)
	session, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, session.Summary.Processed)
}
