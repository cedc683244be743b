package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Factor-AI
type Config struct {
	Environment string         `toml:"environment"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Logging     LoggingConfig  `toml:"logging"`
	Universe    UniverseConfig `toml:"universe"`
	Scan        ScanParams     `toml:"scan"`
	Schedule    ScheduleConfig `toml:"schedule"`
}

// StorageConfig holds the embedded store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD    EODHDConfig    `toml:"eodhd"`
	Telegram TelegramConfig `toml:"telegram"`
}

// EODHDConfig holds market data provider configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// TelegramConfig holds the notification sink configuration. Delivery is
// fire-and-forget; an empty token disables notifications.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// UniverseConfig describes where the instrument universe comes from.
type UniverseConfig struct {
	Exchanges []string `toml:"exchanges"` // provider exchange codes, one per market segment
	Benchmark string   `toml:"benchmark"` // market index symbol for beta estimation
}

// ScheduleConfig holds the cron expression for periodic scans.
type ScheduleConfig struct {
	Cron string `toml:"cron"`
}

// ScanParams is the immutable parameter set for one scan pipeline. It is
// passed in at construction so concurrent scans can run with different
// parameters without interference.
type ScanParams struct {
	RiskFreeRate      float64 `toml:"risk_free_rate"`
	MarketRiskPremium float64 `toml:"market_risk_premium"`
	DividendGrowth    float64 `toml:"dividend_growth"`    // assumed perpetual growth rate
	DenominatorFloor  float64 `toml:"denominator_floor"`  // Gordon model safety floor
	CostOfDebt        float64 `toml:"cost_of_debt"`       // for the financing suggestion
	TaxRate           float64 `toml:"tax_rate"`           // assumed rate for after-tax operating profit

	MinPrice          float64 `toml:"min_price"`           // penny-stock gate
	MinHistoryBars    int     `toml:"min_history_bars"`    // bars required before any statistic
	MinAlignedSamples int     `toml:"min_aligned_samples"` // aligned instrument/benchmark returns for beta
	HistoryDays       int     `toml:"history_days"`        // calendar lookback for the series window

	MaxRunupPct          float64 `toml:"max_runup_pct"`          // gate: max distance above the medium-term MA
	MinCapitalEfficiency float64 `toml:"min_capital_efficiency"` // gate: floor on ROIC-like ratio when known
	MinCashFlowYield     float64 `toml:"min_cash_flow_yield"`    // gate: floor on FCF yield when known

	MinScore           float64 `toml:"min_score"`            // inclusion threshold for the ranked set
	BuyScore           float64 `toml:"buy_score"`            // higher bar for the buy-now verdict
	AnchorTolerancePct float64 `toml:"anchor_tolerance_pct"` // how close to the anchor counts as "at" it
	SmallCapMax        float64 `toml:"small_cap_max"`        // market-cap ceiling for the size factor

	Workers    int    `toml:"workers"`
	BatchSize  int    `toml:"batch_size"`
	BatchPause string `toml:"batch_pause"`
}

// GetBatchPause parses the inter-batch pacing delay.
func (p *ScanParams) GetBatchPause() time.Duration {
	d, err := time.ParseDuration(p.BatchPause)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// Validate rejects parameter sets that would make the pipeline meaningless.
// A broken parameter set is a programming/deployment fault, the only class
// of failure that is allowed to be fatal.
func (p *ScanParams) Validate() error {
	if p.DenominatorFloor <= 0 {
		return fmt.Errorf("scan.denominator_floor must be positive, got %v", p.DenominatorFloor)
	}
	if p.MinHistoryBars <= 0 || p.MinAlignedSamples <= 0 {
		return fmt.Errorf("scan minimum sample sizes must be positive")
	}
	if p.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive, got %d", p.Workers)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("scan.batch_size must be positive, got %d", p.BatchSize)
	}
	return nil
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Path: "data/market",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "15s",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Universe: UniverseConfig{
			Exchanges: []string{"TW", "TWO"},
			Benchmark: "TWII.INDX",
		},
		Scan: ScanParams{
			RiskFreeRate:      0.015,
			MarketRiskPremium: 0.055,
			DividendGrowth:    0.02,
			DenominatorFloor:  0.015,
			CostOfDebt:        0.04,
			TaxRate:           0.20,

			MinPrice:          10,
			MinHistoryBars:    100,
			MinAlignedSamples: 60,
			HistoryDays:       365,

			MaxRunupPct:          15,
			MinCapitalEfficiency: 0.04,
			MinCashFlowYield:     0.0,

			MinScore:           50,
			BuyScore:           65,
			AnchorTolerancePct: 2,
			SmallCapMax:        50_000_000_000,

			Workers:    8,
			BatchSize:  200,
			BatchPause: "2s",
		},
		Schedule: ScheduleConfig{
			Cron: "0 30 8 * * MON-FRI",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Scan.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FACTORAI_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FACTORAI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FACTORAI_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if token := os.Getenv("FACTORAI_TELEGRAM_TOKEN"); token != "" {
		config.Clients.Telegram.BotToken = token
	}
	if chat := os.Getenv("FACTORAI_TELEGRAM_CHAT_ID"); chat != "" {
		config.Clients.Telegram.ChatID = chat
	}

	if bench := os.Getenv("FACTORAI_BENCHMARK"); bench != "" {
		config.Universe.Benchmark = bench
	}

	if workers := os.Getenv("FACTORAI_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Scan.Workers = n
		}
	}

	if batch := os.Getenv("FACTORAI_BATCH_SIZE"); batch != "" {
		if n, err := strconv.Atoi(batch); err == nil {
			config.Scan.BatchSize = n
		}
	}

	if score := os.Getenv("FACTORAI_MIN_SCORE"); score != "" {
		if v, err := strconv.ParseFloat(score, 64); err == nil {
			config.Scan.MinScore = v
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
