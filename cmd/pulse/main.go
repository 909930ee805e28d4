package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse - market data aggregation and forecast engine",
	Long: `Pulse aggregates Indian banking sector quotes from multiple public
sources, computes technical indicators and serves multi-horizon price
forecasts over REST and WebSocket.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
