package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chenruby1109/factor-ai/internal/app"
	"github.com/chenruby1109/factor-ai/internal/services/report"
)

var (
	scanNotify bool
	scanTopN   int
)

// scanCmd runs one scan over the full universe and prints the ranked result.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one full-universe scan",
	Long: `Enumerate the instrument universe, score every instrument, and print
the ranked results as a markdown table.

Examples:
  factorai scan
  factorai scan --notify --top 5
  factorai scan --config /etc/factorai.toml`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanNotify, "notify", false, "Send the top results to the configured notifier")
	scanCmd.Flags().IntVar(&scanTopN, "top", 10, "Number of results to include in the notification")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := a.Orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Print(report.FormatMarkdown(session))

	if scanNotify {
		if err := a.Notifier.Notify(ctx, report.FormatNotification(session, scanTopN)); err != nil {
			a.Logger.Warn().Err(err).Msg("Notification failed")
		}
	}

	return nil
}
