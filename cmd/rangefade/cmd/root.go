package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rangefade",
	Short: "Session range-fade trading bot for European index CFDs",
	Long: `Rangefade observes the early-session price range of European index
CFDs, then fades breakouts of that range during a fixed execution window.

It provides commands for:
  - Running the live trading loop against an MT5 bridge
  - Checking bridge connectivity and symbol availability
  - Printing the daily trading summary
  - Querying the trade journal`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
