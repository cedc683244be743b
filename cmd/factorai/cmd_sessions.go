package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chenruby1109/factor-ai/internal/app"
	"github.com/chenruby1109/factor-ai/internal/services/report"
)

var sessionsLimit int

// sessionsCmd lists persisted scan sessions; with an ID argument it prints
// one session's full report.
var sessionsCmd = &cobra.Command{
	Use:   "sessions [id]",
	Short: "List or show persisted scan sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "Maximum sessions to list")
}

func runSessions(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	if len(args) == 1 {
		session, err := a.Storage.GetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session %s not found", args[0])
		}
		fmt.Print(report.FormatMarkdown(session))
		return nil
	}

	sessions, err := a.Storage.ListSessions(cmd.Context(), sessionsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tUNIVERSE\tQUALIFIED\tDURATION")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04"),
			s.Universe,
			s.Summary.Qualified,
			s.Summary.Duration.Round(time.Second))
	}
	w.Flush()
	return nil
}
