package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chenruby1109/factor-ai/internal/app"
)

var metricsAddr string

// scheduleCmd runs the cron-driven daemon with a Prometheus metrics endpoint.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scans on the configured cron schedule",
	Long: `Start the long-running daemon. Scans fire on the cron expression from
the [schedule] config section and push the top results to the configured
notifier. Prometheus metrics are served on --metrics-addr.

Example:
  factorai schedule --metrics-addr :9090`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Listen address for the /metrics endpoint")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux}

	go func() {
		a.Logger.Info().Str("addr", metricsAddr).Msg("Metrics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error().Err(err).Msg("Metrics endpoint failed")
		}
	}()

	err = a.StartScheduler(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	return err
}
