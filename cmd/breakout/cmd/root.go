package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "breakout",
	Short: "Session-breakout trading decision engine",
	Long: `Breakout converts per-bar FX price data into trade entry decisions
for a session-keyed range breakout strategy.

It provides tools for:
  - Replaying candle files through the strategy against a simulated venue
  - Risk-based position sizing normalized to a base currency
  - Journaling order fills and closes to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
