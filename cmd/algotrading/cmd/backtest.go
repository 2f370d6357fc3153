package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	backtestdomain "github.com/ryanlattanzi/algo-trading/internal/domain/backtest"
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/infra/store"
	backtestsvc "github.com/ryanlattanzi/algo-trading/internal/service/backtest"
)

var (
	backtestPeriod  string
	backtestStart   string
	backtestEnd     string
	backtestCapital string
	backtestTrades  bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest <ticker>",
	Short: "Replay a strategy over stored history",
	Long: `Runs an all-in/all-out simulation of the selected strategy over the
ticker's stored history and prints the capital gains summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestPeriod, "period", "max", "window preset (1mo, 3mo, 6mo, 1yr, 2yr, 5yr, 10yr, max)")
	backtestCmd.Flags().StringVar(&backtestStart, "start", "", "start date (YYYY-MM-DD, overrides --period)")
	backtestCmd.Flags().StringVar(&backtestEnd, "end", "", "end date (YYYY-MM-DD, default latest bar)")
	backtestCmd.Flags().StringVar(&backtestCapital, "capital", "10000", "starting capital")
	backtestCmd.Flags().BoolVar(&backtestTrades, "trades", false, "print the executed trades")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, err := buildBacktestRequest(args[0])
	if err != nil {
		return err
	}

	stores, err := store.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	result, trades, err := backtestsvc.NewRunner(stores.Bars).Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("ticker:          %s\n", result.Ticker)
	fmt.Printf("window:          %s .. %s\n", result.StartDate, result.EndDate)
	fmt.Printf("initial capital: %s\n", result.InitCap)
	fmt.Printf("final capital:   %s\n", result.FinalCap)
	fmt.Printf("capital gains:   %s%%\n", result.CapGainsPct)
	fmt.Printf("trades:          %d\n", result.NumTrades)

	if backtestTrades {
		dates := make([]string, 0, len(trades))
		for date := range trades {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			fmt.Printf("  %s  %s\n", date, trades[date])
		}
	}
	return nil
}

func buildBacktestRequest(ticker string) (backtestdomain.Request, error) {
	capital, err := decimal.NewFromString(backtestCapital)
	if err != nil {
		return backtestdomain.Request{}, fmt.Errorf("invalid capital %q", backtestCapital)
	}

	req := backtestdomain.Request{
		Ticker:          ticker,
		Strategy:        backtestdomain.Strategy(strategyName()),
		StartingCapital: capital,
	}

	if days, bounded := backtestdomain.Period(backtestPeriod).Days(); bounded {
		req.StartDate = tradingDay().AddDate(0, 0, -days)
	} else if backtestdomain.Period(backtestPeriod) != backtestdomain.PeriodMax {
		return backtestdomain.Request{}, fmt.Errorf("unknown period %q", backtestPeriod)
	}
	if backtestStart != "" {
		req.StartDate, err = time.Parse(market.DateFormat, backtestStart)
		if err != nil {
			return backtestdomain.Request{}, fmt.Errorf("invalid start date %q", backtestStart)
		}
	}
	if backtestEnd != "" {
		req.EndDate, err = time.Parse(market.DateFormat, backtestEnd)
		if err != nil {
			return backtestdomain.Request{}, fmt.Errorf("invalid end date %q", backtestEnd)
		}
	}

	return req, req.Validate()
}
