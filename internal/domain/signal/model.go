package signal

import (
	"time"

	"github.com/google/uuid"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// Status is the discrete trading decision emitted by the state machine.
type Status string

const (
	StatusBuy  Status = "BUY"
	StatusSell Status = "SELL"
	StatusWait Status = "WAIT"
	StatusHold Status = "HOLD"
)

// IsValid checks if status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusBuy, StatusSell, StatusWait, StatusHold:
		return true
	default:
		return false
	}
}

// State is the persisted per-ticker crossover record. Only the two cross
// dates and the last persisted status survive across invocations; HOLD and
// WAIT are derived on every evaluation, never stored.
type State struct {
	LastCrossUp   time.Time
	LastCrossDown time.Time
	LastStatus    Status
}

// DefaultState returns the sentinel state for a ticker with no observed
// crossover: cross-up one day older than cross-down, waiting to buy.
func DefaultState() State {
	return State{
		LastCrossUp:   time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		LastCrossDown: time.Date(1900, 1, 2, 0, 0, 0, 0, time.UTC),
		LastStatus:    StatusSell,
	}
}

// Bullish reports whether the recorded crossover order puts the ticker in a
// bullish regime (last event was a cross-up).
func (s State) Bullish() bool {
	return s.LastCrossUp.After(s.LastCrossDown)
}

// TradeEvent is the immutable output of one evaluation. Date is the zero
// time when the ticker had no bar for the evaluation date.
type TradeEvent struct {
	EventID uuid.UUID `json:"event_id"`
	Date    time.Time `json:"date"`
	Ticker  string    `json:"ticker"`
	Signal  Status    `json:"signal"`
}

// NewTradeEvent builds an event with a fresh ID.
func NewTradeEvent(date time.Time, ticker string, sig Status) TradeEvent {
	return TradeEvent{
		EventID: uuid.New(),
		Date:    date,
		Ticker:  ticker,
		Signal:  sig,
	}
}

// DateString renders the event date for notifications; empty when no bar.
func (e TradeEvent) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(market.DateFormat)
}
