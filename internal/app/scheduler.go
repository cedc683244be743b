package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/chenruby1109/factor-ai/internal/services/report"
)

const notificationTopN = 10

// StartScheduler runs scans on the configured cron expression until ctx is
// cancelled. The expression uses six fields with seconds first. Overlapping
// runs are skipped rather than queued.
func (a *App) StartScheduler(ctx context.Context) error {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(a.Config.Schedule.Cron, func() {
		a.runScheduledScan(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.Config.Schedule.Cron, err)
	}

	a.Logger.Info().Str("cron", a.Config.Schedule.Cron).Msg("Scheduler started")
	c.Start()

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	a.Logger.Info().Msg("Scheduler stopped")
	return nil
}

func (a *App) runScheduledScan(ctx context.Context) {
	session, err := a.Orchestrator.Run(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Scheduled scan failed")
		return
	}

	if err := a.Notifier.Notify(ctx, report.FormatNotification(session, notificationTopN)); err != nil {
		a.Logger.Warn().Err(err).Msg("Scan notification failed")
	}
}
