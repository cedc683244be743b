package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chenruby1109/factor-ai/internal/app"
)

// universeCmd lists the instrument universe the scan would cover.
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the instrument universe",
	RunE:  runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	instruments, err := a.Universe.Instruments(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tSEGMENT")
	for _, inst := range instruments {
		fmt.Fprintf(w, "%s\t%s\t%s\n", inst.Symbol, inst.Name, inst.Segment)
	}
	w.Flush()

	fmt.Printf("\n%d instruments\n", len(instruments))
	return nil
}
