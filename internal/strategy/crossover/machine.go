package crossover

import (
	"context"
	"fmt"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Machine converts persisted crossover state into the next trading decision.
// It is a Mealy-style machine: only the two cross dates and the last status
// are persisted; HOLD and WAIT are derived on every call, never stored. A
// transition that changes the status (SELL->BUY, BUY->SELL) atomically
// advances the persisted status, so the same regime evaluated again yields
// the no-op decision (HOLD or WAIT).
type Machine struct {
	ticker string
	key    string
	states signal.KeyValueRepository
}

// NewMachine builds a machine for one ticker over the given state store.
// key is the namespaced state key (detector.StateKey).
func NewMachine(ticker, key string, states signal.KeyValueRepository) *Machine {
	return &Machine{ticker: ticker, key: key, states: states}
}

// Evaluate emits the decision for the given bar date. A zero date means the
// ticker had no bar for the evaluation date: the machine short-circuits to
// WAIT without reading or writing state. Missing or malformed persisted
// state is the caller's error to handle; the machine never seeds a default.
func (m *Machine) Evaluate(ctx context.Context, date time.Time) (signal.TradeEvent, error) {
	if date.IsZero() {
		return signal.NewTradeEvent(time.Time{}, m.ticker, signal.StatusWait), nil
	}

	raw, err := m.states.Get(ctx, m.key)
	if err != nil {
		return signal.TradeEvent{}, fmt.Errorf("ticker %s: %w", m.ticker, err)
	}
	st, err := signal.DecodeState(raw)
	if err != nil {
		return signal.TradeEvent{}, fmt.Errorf("ticker %s: %w", m.ticker, err)
	}

	var next signal.Status
	if st.Bullish() {
		if st.LastStatus == signal.StatusBuy {
			next = signal.StatusHold
		} else {
			next = signal.StatusBuy
		}
	} else {
		if st.LastStatus == signal.StatusBuy {
			next = signal.StatusSell
		} else {
			next = signal.StatusWait
		}
	}

	if next == signal.StatusBuy || next == signal.StatusSell {
		st.LastStatus = next
		encoded, err := signal.EncodeState(st)
		if err != nil {
			return signal.TradeEvent{}, fmt.Errorf("ticker %s: %w", m.ticker, err)
		}
		if err := m.states.Set(ctx, m.key, encoded); err != nil {
			return signal.TradeEvent{}, fmt.Errorf("ticker %s persist status: %w", m.ticker, err)
		}
	}

	return signal.NewTradeEvent(date, m.ticker, next), nil
}
