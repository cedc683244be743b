// Package fundamentals resolves per-instrument financial metrics with a
// two-tier strategy: the provider's aggregate record first, then derivation
// from raw statement line items for whatever the aggregate is missing.
package fundamentals

import (
	"context"
	"time"

	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/models"
)

// Statement schemas are not standardized across issuers, so each derivation
// probes several known label variants and gives up silently when none match.
var (
	operatingIncomeLabels = []string{"operatingIncome", "ebit", "incomeBeforeTax"}
	totalDebtLabels       = []string{"shortLongTermDebtTotal", "totalDebt", "longTermDebtTotal"}
	equityLabels          = []string{"totalStockholderEquity", "totalEquity", "commonStockTotalEquity"}
	cashLabels            = []string{"cashAndEquivalents", "cash", "cashAndShortTermInvestments"}
	operatingCashLabels   = []string{"totalCashFromOperatingActivities", "operatingCashFlow", "cashFlowsFromOperatingActivities"}
	capexLabels           = []string{"capitalExpenditures", "capitalExpenditure", "investmentsInPropertyPlantAndEquipment"}
)

// Miner fills a FinancialMetrics bag best-effort, field by field. One
// field's failure never blocks the others, and the miner as a whole never
// fails: at worst the bag comes back empty.
type Miner struct {
	client  interfaces.MarketDataClient
	cache   interfaces.MetricsCache
	logger  *common.Logger
	taxRate float64

	now func() time.Time
}

// NewMiner creates a metrics miner. taxRate is the assumed rate applied to
// operating profit in the capital-efficiency derivation. cache may be nil,
// in which case every bag is mined fresh.
func NewMiner(client interfaces.MarketDataClient, cache interfaces.MetricsCache, taxRate float64, logger *common.Logger) *Miner {
	return &Miner{
		client:  client,
		cache:   cache,
		logger:  logger,
		taxRate: taxRate,
		now:     time.Now,
	}
}

// Mine resolves as many metric fields as possible for one instrument. price
// is the already-resolved current price, used to turn a yield into a
// dividend rate and to estimate market cap context where needed.
func (m *Miner) Mine(ctx context.Context, symbol string, price float64) *models.FinancialMetrics {
	if cached := m.fromCache(ctx, symbol, price); cached != nil {
		return cached
	}

	metrics := &models.FinancialMetrics{Symbol: symbol}

	m.fillFromAggregate(ctx, symbol, metrics)

	// Dividend rate can be reconstructed from yield and price when the
	// aggregate carries only the yield.
	if metrics.DividendRate == nil && metrics.DividendYield != nil && price > 0 {
		rate := price * *metrics.DividendYield
		if rate > 0 {
			metrics.DividendRate = &rate
		}
	}

	if m.needsRawTier(metrics) {
		m.fillFromStatements(ctx, symbol, metrics)
	}

	if m.cache != nil {
		metrics.UpdatedAt = m.now()
		if err := m.cache.PutMetrics(ctx, metrics); err != nil {
			m.logger.Warn().Str("symbol", symbol).Err(err).Msg("Metrics cache write failed")
		}
	}

	return metrics
}

// fromCache returns a still-fresh cached bag, refreshing the price-derived
// dividend rate against the current price.
func (m *Miner) fromCache(ctx context.Context, symbol string, price float64) *models.FinancialMetrics {
	if m.cache == nil {
		return nil
	}

	cached, err := m.cache.GetMetrics(ctx, symbol)
	if err != nil {
		m.logger.Warn().Str("symbol", symbol).Err(err).Msg("Metrics cache read failed, mining fresh")
		return nil
	}
	if cached == nil || !common.IsFresh(cached.UpdatedAt, common.FreshnessFundamentals) {
		return nil
	}

	if cached.DividendRate == nil && cached.DividendYield != nil && price > 0 {
		rate := price * *cached.DividendYield
		if rate > 0 {
			cached.DividendRate = &rate
		}
	}
	return cached
}

// needsRawTier reports whether any statement-derivable field is still
// missing after the aggregate tier.
func (m *Miner) needsRawTier(metrics *models.FinancialMetrics) bool {
	return metrics.CapitalEfficiency == nil || metrics.CashFlowYield == nil || metrics.TotalDebt == nil
}

// fillFromAggregate copies whatever the consolidated endpoint has. Zero
// values in the payload mean "absent" and stay nil.
func (m *Miner) fillFromAggregate(ctx context.Context, symbol string, metrics *models.FinancialMetrics) {
	agg, err := m.client.GetFundamentals(ctx, symbol)
	if err != nil {
		m.logger.Debug().Str("symbol", symbol).Err(err).Msg("Aggregate metrics unavailable")
		return
	}

	setIfPositive(&metrics.MarketCap, agg.MarketCap)
	setIfPositive(&metrics.PriceToBook, agg.PriceToBook)
	setIfPositive(&metrics.DividendRate, agg.DividendRate)
	setIfPositive(&metrics.DividendYield, agg.DividendYield)
	setIfNonZero(&metrics.ReturnOnEquity, agg.ReturnOnEquityTTM)
	setIfNonZero(&metrics.RevenueGrowth, agg.RevenueGrowthYOY)
	setIfNonZero(&metrics.CapitalEfficiency, agg.ReturnOnInvested)

	if agg.FreeCashFlowTTM != 0 && agg.MarketCap > 0 {
		yield := agg.FreeCashFlowTTM / agg.MarketCap
		metrics.CashFlowYield = &yield
	}
}

// fillFromStatements derives missing fields from raw statement line items.
// Every derivation is independent: a missing line item skips that field
// only.
func (m *Miner) fillFromStatements(ctx context.Context, symbol string, metrics *models.FinancialMetrics) {
	stmts, err := m.client.GetFinancialStatements(ctx, symbol)
	if err != nil {
		m.logger.Debug().Str("symbol", symbol).Err(err).Msg("Raw statements unavailable")
		return
	}

	debt, hasDebt := models.Line(stmts.Balance, totalDebtLabels...)
	if hasDebt && metrics.TotalDebt == nil {
		metrics.TotalDebt = &debt
	}

	if metrics.CapitalEfficiency == nil {
		m.deriveCapitalEfficiency(stmts, debt, hasDebt, metrics)
	}

	if metrics.CashFlowYield == nil {
		m.deriveCashFlowYield(stmts, metrics)
	}
}

// deriveCapitalEfficiency computes an ROIC-like ratio:
// after-tax operating profit / (debt + equity - cash), guarded against a
// non-positive denominator.
func (m *Miner) deriveCapitalEfficiency(stmts *models.FinancialStatements, debt float64, hasDebt bool, metrics *models.FinancialMetrics) {
	opIncome, ok := models.Line(stmts.Income, operatingIncomeLabels...)
	if !ok {
		return
	}
	equity, ok := models.Line(stmts.Balance, equityLabels...)
	if !ok {
		return
	}
	cash, _ := models.Line(stmts.Balance, cashLabels...)
	if !hasDebt {
		debt = 0
	}

	investedCapital := debt + equity - cash
	if investedCapital <= 0 {
		return
	}

	ratio := opIncome * (1 - m.taxRate) / investedCapital
	metrics.CapitalEfficiency = &ratio
}

// deriveCashFlowYield computes free cash flow / market cap. Capital
// expenditure arrives as a negative outflow, so FCF is the plain sum.
func (m *Miner) deriveCashFlowYield(stmts *models.FinancialStatements, metrics *models.FinancialMetrics) {
	if metrics.MarketCap == nil || *metrics.MarketCap <= 0 {
		return
	}
	ocf, ok := models.Line(stmts.CashFlow, operatingCashLabels...)
	if !ok {
		return
	}
	capex, _ := models.Line(stmts.CashFlow, capexLabels...)
	if capex > 0 {
		// Some issuers report capex as a positive magnitude.
		capex = -capex
	}

	yield := (ocf + capex) / *metrics.MarketCap
	metrics.CashFlowYield = &yield
}

func setIfPositive(dst **float64, v float64) {
	if v > 0 {
		value := v
		*dst = &value
	}
}

func setIfNonZero(dst **float64, v float64) {
	if v != 0 {
		value := v
		*dst = &value
	}
}

// Ensure Miner implements MetricsMiner
var _ interfaces.MetricsMiner = (*Miner)(nil)
