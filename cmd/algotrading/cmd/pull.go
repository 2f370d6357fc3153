package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [tickers...]",
	Short: "Pull daily bars into the history store",
	Long: `Fetches daily bars for the given tickers (or the ticker config list)
and appends them to the history store. A new ticker gets a full history
pull and a seeded crossover state.`,
	RunE: runPull,
}

func runPull(cmd *cobra.Command, args []string) error {
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

	return svc.Pull(ctx, tickers, tradingDay())
}

// tradingDay is today at UTC midnight, the granularity bars are stored at.
func tradingDay() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
