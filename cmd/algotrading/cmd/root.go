// Package cmd holds the algotrading CLI commands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/infra/archive"
	"github.com/ryanlattanzi/algo-trading/internal/infra/marketdata"
	"github.com/ryanlattanzi/algo-trading/internal/infra/notify"
	"github.com/ryanlattanzi/algo-trading/internal/infra/store"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/config"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/logger"
	"github.com/ryanlattanzi/algo-trading/internal/service/pipeline"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

const serviceName = "algotrading"

var (
	cfg      *config.Config
	strategy string
)

var rootCmd = &cobra.Command{
	Use:   "algotrading",
	Short: "Daily crossover signal pipeline and backtester",
	Long: `algotrading tracks daily price history per ticker, maintains
moving-average crossover state, emits BUY/SELL/HOLD/WAIT decisions, and
replays strategies over stored history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return logger.Init(logger.Config{
			Level:         cfg.Logging.Level,
			Format:        cfg.Logging.Format,
			FileEnabled:   cfg.Logging.FileEnabled,
			FilePath:      cfg.Logging.FilePath,
			RotationSize:  cfg.Logging.RotationSize,
			RetentionDays: cfg.Logging.RetentionDays,
			ServiceName:   serviceName,
		})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "crossover strategy (sma_cross, macd_cross); defaults to the ticker config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(backtestCmd)
}

// newPipeline builds the pipeline service from configuration. The caller
// owns the returned stores and must Close them.
func newPipeline(ctx context.Context) (*pipeline.Service, *store.Stores, error) {
	stores, err := store.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	detector, err := crossover.ByName(strategyName())
	if err != nil {
		stores.Close()
		return nil, nil, err
	}

	var archiver market.Archiver
	if cfg.Archive.Enabled {
		archiver = archive.NewParquetArchiver(cfg.Archive.Dir)
	}

	var notifier signal.Notifier = notify.LogNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL)
	}

	source := marketdata.NewAlpacaSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL)

	svc := pipeline.New(stores.Bars, stores.States, source, archiver, notifier, detector)
	return svc, stores, nil
}

func strategyName() string {
	if strategy != "" {
		return strategy
	}
	return cfg.Tickers.Strategy
}

func tickersOrArgs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Tickers.TickerList) == 0 {
		return nil, fmt.Errorf("no tickers: pass them as arguments or set ticker_list in the ticker config")
	}
	return cfg.Tickers.TickerList, nil
}
