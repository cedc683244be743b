package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chenruby1109/factor-ai/internal/common"
)

var configPath string

// rootCmd is the base command for the factor-ai CLI
var rootCmd = &cobra.Command{
	Use:   "factorai",
	Short: "Multi-factor equity screening pipeline",
	Long: `factorai scans a full equity universe and ranks instruments by a
multi-factor score combining value, growth, quality, momentum, and risk
signals, with CAPM-based fair value anchoring.

Use 'factorai scan' for a one-shot run or 'factorai schedule' for the
cron-driven daemon.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("factorai %s\n", common.Version)
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
