// Command value-lab records value bets, settles them from their results and
// reports portfolio performance.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "value-lab",
	Short:         "Value betting ledger and portfolio tracker",
	Long:          `Records bets with their expected value, settles them once results are known and reports ROI, win rate and forecast accuracy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Version = Version + " (" + GitCommit + ")"

	rootCmd.AddCommand(
		newAddCmd(),
		newResultCmd(),
		newReconcileCmd(),
		newSummaryCmd(),
		newQuotesCmd(),
		newAnalyzeCmd(),
		newServeCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
