// Package scanner drives the scoring pipeline over the full instrument
// universe with bounded concurrency and batching.
package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/metrics"
	"github.com/chenruby1109/factor-ai/internal/models"
	"github.com/chenruby1109/factor-ai/internal/quant"
	"github.com/chenruby1109/factor-ai/internal/services/scorer"
	"github.com/chenruby1109/factor-ai/internal/services/universe"
)

// Orchestrator runs one end-to-end scan: universe enumeration, the shared
// benchmark series, then batch-by-batch dispatch of per-instrument
// pipelines. A single instrument's failure never affects another instrument
// or the scan.
type Orchestrator struct {
	params   common.ScanParams
	universe interfaces.UniverseProvider
	pricing  interfaces.PriceResolver
	series   interfaces.SeriesStore
	miner    interfaces.MetricsMiner
	scorer   *scorer.Scorer
	sessions interfaces.SessionStore
	logger   *common.Logger

	benchmarkSymbol string
	pause           func(time.Duration) // injectable for tests
}

// NewOrchestrator wires a scan orchestrator. sessions may be nil when
// persistence is not wanted.
func NewOrchestrator(
	params common.ScanParams,
	universeProvider interfaces.UniverseProvider,
	pricing interfaces.PriceResolver,
	seriesStore interfaces.SeriesStore,
	miner interfaces.MetricsMiner,
	sessions interfaces.SessionStore,
	benchmarkSymbol string,
	logger *common.Logger,
) *Orchestrator {
	return &Orchestrator{
		params:          params,
		universe:        universeProvider,
		pricing:         pricing,
		series:          seriesStore,
		miner:           miner,
		scorer:          scorer.NewScorer(params),
		sessions:        sessions,
		logger:          logger,
		benchmarkSymbol: benchmarkSymbol,
		pause:           time.Sleep,
	}
}

// Run executes one full scan. It always completes: an empty result set is a
// valid outcome, and the summary reports processed vs qualified counts
// either way.
func (o *Orchestrator) Run(ctx context.Context) (*models.ScanSession, error) {
	start := time.Now()

	session := &models.ScanSession{
		ID:              uuid.NewString(),
		StartedAt:       start.UTC(),
		BenchmarkSymbol: o.benchmarkSymbol,
	}

	instruments, err := o.universe.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	session.Universe = len(instruments)
	names := universe.NameMap(instruments)

	// The benchmark return series is computed once and shared read-only by
	// every worker. When it cannot be resolved the scan still runs: the
	// risk model will refuse per instrument and nothing qualifies.
	benchmark, err := o.series.BenchmarkReturns(ctx)
	if err != nil {
		o.logger.Warn().Str("benchmark", o.benchmarkSymbol).Err(err).Msg("Benchmark returns unavailable, scan will produce no results")
		metrics.ProviderErrors.WithLabelValues("benchmark").Inc()
	}
	session.BenchmarkSamples = len(benchmark)

	o.logger.Info().
		Int("universe", len(instruments)).
		Int("workers", o.params.Workers).
		Int("batch_size", o.params.BatchSize).
		Msg("Scan started")

	var results []models.ScoreResult
	processed := 0
	batches := 0

	for offset := 0; offset < len(instruments); offset += o.params.BatchSize {
		if ctx.Err() != nil {
			break
		}

		end := offset + o.params.BatchSize
		if end > len(instruments) {
			end = len(instruments)
		}

		// All per-instrument working state lives inside runBatch's scope
		// and is released when the batch returns, bounding peak memory to
		// one batch's worth of history windows.
		batchResults := o.runBatch(ctx, instruments[offset:end], names, benchmark)
		results = append(results, batchResults...)
		processed += end - offset
		batches++

		o.logger.Info().
			Int("processed", processed).
			Int("universe", len(instruments)).
			Int("qualified", len(results)).
			Msg("Scan progress")

		if end < len(instruments) {
			o.pause(o.params.GetBatchPause())
		}
	}

	// Strategy-tagged instruments rank first, then by score.
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := len(results[i].StrategyTags) > 0, len(results[j].StrategyTags) > 0
		if si != sj {
			return si
		}
		return results[i].Score > results[j].Score
	})

	session.Results = results
	session.CompletedAt = time.Now().UTC()
	session.Summary = models.ScanSummary{
		Processed: processed,
		Qualified: len(results),
		Batches:   batches,
		Duration:  time.Since(start),
	}

	metrics.ScanDuration.Observe(time.Since(start).Seconds())

	if o.sessions != nil {
		if err := o.sessions.SaveSession(ctx, session); err != nil {
			o.logger.Warn().Err(err).Msg("Failed to persist scan session")
		}
	}

	o.logger.Info().
		Int("processed", processed).
		Int("qualified", len(results)).
		Dur("duration", session.Summary.Duration).
		Msg("Scan completed")

	return session, nil
}

// runBatch dispatches one batch to the bounded worker pool and drains it
// fully before returning. Each worker appends at most one result under the
// mutex; no ordering is guaranteed.
func (o *Orchestrator) runBatch(ctx context.Context, batch []models.Instrument, names map[string]string, benchmark models.ReturnSeries) []models.ScoreResult {
	sem := make(chan struct{}, o.params.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []models.ScoreResult

	for _, inst := range batch {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(inst models.Instrument) {
			defer wg.Done()
			defer func() { <-sem }()

			metrics.InstrumentsProcessed.Inc()
			if result := o.scanInstrument(ctx, inst, names[inst.Symbol], benchmark); result != nil {
				metrics.InstrumentsQualified.Inc()
				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			}
		}(inst)
	}

	wg.Wait()
	return results
}

// scanInstrument runs the full per-instrument pipeline. Every absence —
// unresolved price, short history, missing benchmark overlap — degrades to
// nil; only the scorer decides qualification.
func (o *Orchestrator) scanInstrument(ctx context.Context, inst models.Instrument, name string, benchmark models.ReturnSeries) *models.ScoreResult {
	price, err := o.pricing.Resolve(ctx, inst.Symbol)
	if err != nil {
		if !errors.Is(err, common.ErrUnresolved) {
			metrics.ProviderErrors.WithLabelValues("price").Inc()
		}
		return nil
	}

	bars, err := o.series.Window(ctx, inst.Symbol)
	if err != nil {
		if !errors.Is(err, common.ErrInsufficientData) {
			metrics.ProviderErrors.WithLabelValues("series").Inc()
			o.logger.Debug().Str("symbol", inst.Symbol).Err(err).Msg("History window unavailable")
		}
		return nil
	}

	returns := quant.Returns(bars)

	beta, err := quant.Beta(returns, benchmark, o.params.MinAlignedSamples)
	if err != nil {
		// Too little overlap with the benchmark: refuse rather than guess.
		return nil
	}
	requiredReturn := quant.RequiredReturn(beta, o.params.RiskFreeRate, o.params.MarketRiskPremium)

	financials := o.miner.Mine(ctx, inst.Symbol, price.Price)

	return o.scorer.Score(scorer.Input{
		Instrument:     inst,
		Name:           name,
		Price:          *price,
		Bars:           bars,
		Returns:        returns,
		Metrics:        financials,
		Beta:           beta,
		RequiredReturn: requiredReturn,
	})
}
