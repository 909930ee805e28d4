package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketpulse/pulse/internal/logger"
	"github.com/marketpulse/pulse/internal/metrics"
)

var snapshotTimeout time.Duration

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [symbol...]",
	Short: "Print a one-shot quote snapshot and exit",
	Long: `Resolves quotes through the source cascade once and prints them as
JSON. With symbols given, also prints a prediction per symbol.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", 30*time.Second, "overall timeout")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	svc := buildService(cfg, metrics.NewRegistry(), log)

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	out := map[string]any{
		"market": svc.GetMarketSnapshot(ctx),
	}

	if len(args) == 0 {
		out["stocks"] = svc.GetAllInstrumentData(ctx)
	} else {
		stocks := make([]any, 0, len(args))
		predictions := make([]any, 0, len(args))
		for _, symbol := range args {
			q, err := svc.GetQuote(ctx, symbol)
			if err != nil {
				return fmt.Errorf("quote for %s: %w", symbol, err)
			}
			stocks = append(stocks, q)
			if p := svc.GetPrediction(ctx, symbol); p != nil {
				predictions = append(predictions, p)
			}
		}
		out["stocks"] = stocks
		out["predictions"] = predictions
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
