package backtest

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Strategy selects which crossover detector drives a run.
type Strategy string

const (
	StrategySMACross  Strategy = "sma_cross"
	StrategyMACDCross Strategy = "macd_cross"
)

// IsValid checks if strategy is a known value.
func (s Strategy) IsValid() bool {
	return s == StrategySMACross || s == StrategyMACDCross
}

// Period presets for the start of a run. PeriodMax replays the full history.
type Period string

const (
	PeriodOneMonth   Period = "1mo"
	PeriodThreeMonth Period = "3mo"
	PeriodSixMonth   Period = "6mo"
	PeriodOneYear    Period = "1yr"
	PeriodTwoYear    Period = "2yr"
	PeriodFiveYear   Period = "5yr"
	PeriodTenYear    Period = "10yr"
	PeriodMax        Period = "max"
)

// Days returns the approximate calendar days covered by a preset, or false
// for PeriodMax.
func (p Period) Days() (int, bool) {
	switch p {
	case PeriodOneMonth:
		return 30, true
	case PeriodThreeMonth:
		return 91, true
	case PeriodSixMonth:
		return 182, true
	case PeriodOneYear:
		return 365, true
	case PeriodTwoYear:
		return 730, true
	case PeriodFiveYear:
		return 1826, true
	case PeriodTenYear:
		return 3652, true
	default:
		return 0, false
	}
}

// Request is a backtest payload. StartDate zero means "max" (full history).
type Request struct {
	Ticker          string
	Strategy        Strategy
	StartDate       time.Time
	EndDate         time.Time
	StartingCapital decimal.Decimal
}

// Validate rejects unusable payloads before a run starts.
func (r Request) Validate() error {
	if r.Ticker == "" {
		return errors.New("ticker is required")
	}
	if !r.Strategy.IsValid() {
		return errors.New("unknown strategy")
	}
	if r.StartingCapital.LessThanOrEqual(decimal.Zero) {
		return errors.New("starting capital must be positive")
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return errors.New("end date before start date")
	}
	return nil
}

// Result summarizes one completed run. Read-only after creation.
type Result struct {
	Ticker      string          `json:"ticker"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	InitCap     decimal.Decimal `json:"init_cap"`
	FinalCap    decimal.Decimal `json:"final_cap"`
	CapGainsPct decimal.Decimal `json:"cap_gains_pct"`
	NumTrades   int             `json:"num_trades"`
}

// TradeBook is the auxiliary audit output: bar date (wire format) to the
// strategy-triggered signal executed on that date.
type TradeBook map[string]signal.Status
