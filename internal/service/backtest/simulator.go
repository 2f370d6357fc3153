// Package backtest replays an annotated price history through the crossover
// detector and state machine, executing simulated all-in/all-out trades
// against an in-memory state store.
package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	backtestdomain "github.com/ryanlattanzi/algo-trading/internal/domain/backtest"
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/infra/keyvalue"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

var oneHundred = decimal.NewFromInt(100)

// Simulator replays one ticker's series bar-by-bar. The first bar only seeds
// the initial state; trading runs from the second bar to the last.
type Simulator struct {
	ticker   string
	detector crossover.Detector
	series   market.Series
	log      zerolog.Logger
}

// NewSimulator builds a simulator over an ascending series. The series must
// already carry the detector's indicator columns (detector.Annotate) and
// hold at least two bars.
func NewSimulator(ticker string, detector crossover.Detector, series market.Series) (*Simulator, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("ticker %s: %w: need at least 2 bars, got %d",
			ticker, market.ErrEmptySeries, len(series))
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}
	return &Simulator{
		ticker:   ticker,
		detector: detector,
		series:   series,
		log:      log.With().Str("ticker", ticker).Str("strategy", detector.Name()).Logger(),
	}, nil
}

// seedState inspects the first bar to decide whether the run starts already
// positioned. If the fast average already sits above the slow one, we
// pretend the buy happened the day before the window; otherwise the mirror
// image applies. Undefined averages fall back to the default sentinel. This
// asymmetry materially affects num_trades and final capital.
func (s *Simulator) seedState() signal.State {
	first := s.series[0]
	fast, slow := s.detector.FastSlow(first)
	if fast == nil || slow == nil {
		return signal.DefaultState()
	}

	if *fast > *slow {
		return signal.State{
			LastCrossUp:   first.Date.AddDate(0, 0, -1),
			LastCrossDown: first.Date.AddDate(0, 0, -2),
			LastStatus:    signal.StatusBuy,
		}
	}
	return signal.State{
		LastCrossUp:   first.Date.AddDate(0, 0, -2),
		LastCrossDown: first.Date.AddDate(0, 0, -1),
		LastStatus:    signal.StatusSell,
	}
}

// Run replays the series with the given starting capital. BUY converts all
// cash to shares at the bar's close, SELL converts all shares back to cash;
// HOLD and WAIT move nothing. Shares still held after the last bar are
// liquidated at the final close as an accounting step that does not count
// as a trade. The returned trade book maps bar date to the executed signal.
func (s *Simulator) Run(ctx context.Context, startingCapital decimal.Decimal) (backtestdomain.Result, backtestdomain.TradeBook, error) {
	seed := s.seedState()
	encoded, err := signal.EncodeState(seed)
	if err != nil {
		return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s: %w", s.ticker, err)
	}

	key := s.detector.StateKey(s.ticker)
	states := keyvalue.NewMemory(map[string]string{key: encoded})
	machine := crossover.NewMachine(s.ticker, key, states)

	book := make(backtestdomain.TradeBook)
	cash := startingCapital
	shares := decimal.Zero
	numTrades := 0

	firstClose := decimal.NewFromFloat(s.series[0].Close)
	if seed.LastStatus == signal.StatusBuy {
		if firstClose.IsZero() {
			return backtestdomain.Result{}, nil, fmt.Errorf(
				"ticker %s bar %s: zero close price", s.ticker, s.series[0].Date.Format(market.DateFormat))
		}
		shares = cash.Div(firstClose)
		cash = decimal.Zero
		s.log.Info().
			Str("shares", shares.String()).
			Str("close", firstClose.String()).
			Str("date", s.series[0].Date.Format(market.DateFormat)).
			Msg("starting run already positioned")
	} else {
		s.log.Info().
			Str("capital", cash.String()).
			Str("date", s.series[0].Date.Format(market.DateFormat)).
			Msg("starting run in cash")
	}

	for i := 1; i < len(s.series); i++ {
		bar := s.series[i]

		raw, err := states.Get(ctx, key)
		if err != nil {
			return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s bar %s: %w",
				s.ticker, bar.Date.Format(market.DateFormat), err)
		}
		st, err := signal.DecodeState(raw)
		if err != nil {
			return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s bar %s: %w",
				s.ticker, bar.Date.Format(market.DateFormat), err)
		}

		sub := s.series[:i+1]
		st = s.detector.CheckCrossUp(sub, i, st)
		st = s.detector.CheckCrossDown(sub, i, st)

		encoded, err := signal.EncodeState(st)
		if err != nil {
			return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s bar %s: %w",
				s.ticker, bar.Date.Format(market.DateFormat), err)
		}
		if err := states.Set(ctx, key, encoded); err != nil {
			return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s bar %s: %w",
				s.ticker, bar.Date.Format(market.DateFormat), err)
		}

		event, err := machine.Evaluate(ctx, bar.Date)
		if err != nil {
			return backtestdomain.Result{}, nil, fmt.Errorf("ticker %s bar %s: %w",
				s.ticker, bar.Date.Format(market.DateFormat), err)
		}

		close := decimal.NewFromFloat(bar.Close)
		switch event.Signal {
		case signal.StatusBuy:
			if close.IsZero() {
				return backtestdomain.Result{}, nil, fmt.Errorf(
					"ticker %s bar %s: zero close price", s.ticker, bar.Date.Format(market.DateFormat))
			}
			shares = cash.Div(close)
			cash = decimal.Zero
			numTrades++
			book[bar.Date.Format(market.DateFormat)] = signal.StatusBuy
			s.log.Debug().
				Str("shares", shares.String()).
				Str("close", close.String()).
				Str("date", bar.Date.Format(market.DateFormat)).
				Msg("bought")
		case signal.StatusSell:
			cash = shares.Mul(close)
			shares = decimal.Zero
			numTrades++
			book[bar.Date.Format(market.DateFormat)] = signal.StatusSell
			s.log.Debug().
				Str("capital", cash.String()).
				Str("close", close.String()).
				Str("date", bar.Date.Format(market.DateFormat)).
				Msg("sold")
		}
	}

	// Accounting liquidation, not a strategy trade.
	if !shares.IsZero() {
		last := s.series[len(s.series)-1]
		cash = shares.Mul(decimal.NewFromFloat(last.Close))
		s.log.Debug().
			Str("shares", shares.String()).
			Str("close", fmt.Sprintf("%g", last.Close)).
			Str("capital", cash.String()).
			Msg("liquidating remaining shares")
		shares = decimal.Zero
	}

	capGains := cash.Sub(startingCapital).Div(startingCapital).Mul(oneHundred).Round(2)

	result := backtestdomain.Result{
		Ticker:      s.ticker,
		StartDate:   s.series[0].Date.Format(market.DateFormat),
		EndDate:     s.series[len(s.series)-1].Date.Format(market.DateFormat),
		InitCap:     startingCapital,
		FinalCap:    cash,
		CapGainsPct: capGains,
		NumTrades:   numTrades,
	}

	s.log.Info().
		Str("init_cap", result.InitCap.String()).
		Str("final_cap", result.FinalCap.String()).
		Str("cap_gains_pct", result.CapGainsPct.String()).
		Int("num_trades", result.NumTrades).
		Msg("backtest complete")

	return result, book, nil
}
