package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill [tickers...]",
	Short: "Rebuild crossover state from stored history",
	Long: `Replays each ticker's full stored history through the detector and
overwrites its persisted crossover state. Use after changing strategy or
repairing history.`,
	RunE: runBackfill,
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tickers, err := tickersOrArgs(args)
	if err != nil {
		return err
	}

	svc, stores, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	for _, ticker := range tickers {
		if err := svc.Backfill(ctx, ticker); err != nil {
			return err
		}
	}
	return nil
}
