package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

var evalDateFlag string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [tickers...]",
	Short: "Run the daily pull-update-evaluate cycle",
	Long: `Pulls new bars, folds the newest bar into each ticker's crossover
state, evaluates the state machine, and notifies on BUY or SELL.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalDateFlag, "date", "", "evaluation date (YYYY-MM-DD, default today)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tickers, err := tickersOrArgs(args)
	if err != nil {
		return err
	}

	evalDate := tradingDay()
	if evalDateFlag != "" {
		evalDate, err = time.Parse(market.DateFormat, evalDateFlag)
		if err != nil {
			return err
		}
	}

	svc, stores, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	defer stores.Close()

	return svc.Run(ctx, tickers, evalDate)
}
