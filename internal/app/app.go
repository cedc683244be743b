// Package app wires configuration, clients, storage, and services into one
// runnable core shared by every command.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chenruby1109/factor-ai/internal/clients/eodhd"
	"github.com/chenruby1109/factor-ai/internal/clients/telegram"
	"github.com/chenruby1109/factor-ai/internal/common"
	"github.com/chenruby1109/factor-ai/internal/interfaces"
	"github.com/chenruby1109/factor-ai/internal/services/fundamentals"
	"github.com/chenruby1109/factor-ai/internal/services/pricing"
	"github.com/chenruby1109/factor-ai/internal/services/scanner"
	"github.com/chenruby1109/factor-ai/internal/services/series"
	"github.com/chenruby1109/factor-ai/internal/services/universe"
	"github.com/chenruby1109/factor-ai/internal/storage"
)

// App holds all initialized clients, storage, and services. It is the shared
// core used by every subcommand.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.Store
	MarketClient interfaces.MarketDataClient
	Notifier     interfaces.Notifier
	Universe     interfaces.UniverseProvider
	Orchestrator *scanner.Orchestrator
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes the full stack. configPath may be empty, in which case
// FACTORAI_CONFIG, the binary directory, then the development default are
// tried in order.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FACTORAI_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "factorai.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/factorai.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to the binary directory for
	// self-contained operation.
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	store, err := storage.Open(config.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - market data requests will fail")
	}

	marketClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	notifier := telegram.NewClient(config.Clients.Telegram.BotToken, config.Clients.Telegram.ChatID,
		telegram.WithLogger(logger),
	)

	universeProvider := universe.NewService(marketClient, config.Universe.Exchanges, logger)
	priceResolver := pricing.NewResolver(marketClient, logger)
	seriesStore := series.NewStore(marketClient, store, config.Universe.Benchmark,
		config.Scan.HistoryDays, config.Scan.MinHistoryBars, logger)
	miner := fundamentals.NewMiner(marketClient, store, config.Scan.TaxRate, logger)

	orchestrator := scanner.NewOrchestrator(config.Scan, universeProvider, priceResolver,
		seriesStore, miner, store, config.Universe.Benchmark, logger)

	app := &App{
		Config:       config,
		Logger:       logger,
		Storage:      store,
		MarketClient: marketClient,
		Notifier:     notifier,
		Universe:     universeProvider,
		Orchestrator: orchestrator,
		StartupTime:  startupStart,
	}

	logger.Info().
		Str("version", common.Version).
		Str("environment", config.Environment).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return app, nil
}

// Shutdown releases held resources. Safe to call once.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down")
	return a.Storage.Close()
}
