package crossover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/infra/keyvalue"
)

func seedStore(t *testing.T, key string, st signal.State) *keyvalue.Memory {
	t.Helper()
	encoded, err := signal.EncodeState(st)
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	return keyvalue.NewMemory(map[string]string{key: encoded})
}

func storedState(t *testing.T, store *keyvalue.Memory, key string) signal.State {
	t.Helper()
	raw, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	st, err := signal.DecodeState(raw)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func TestMachineEvaluate(t *testing.T) {
	ctx := context.Background()
	up := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	down := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	barDate := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		state      signal.State
		want       signal.Status
		wantStored signal.Status
	}{
		{
			name:       "bullish regime after a sell emits BUY",
			state:      signal.State{LastCrossUp: up, LastCrossDown: down, LastStatus: signal.StatusSell},
			want:       signal.StatusBuy,
			wantStored: signal.StatusBuy,
		},
		{
			name:       "bullish regime already bought emits HOLD",
			state:      signal.State{LastCrossUp: up, LastCrossDown: down, LastStatus: signal.StatusBuy},
			want:       signal.StatusHold,
			wantStored: signal.StatusBuy,
		},
		{
			name:       "bearish regime after a buy emits SELL",
			state:      signal.State{LastCrossUp: down, LastCrossDown: up, LastStatus: signal.StatusBuy},
			want:       signal.StatusSell,
			wantStored: signal.StatusSell,
		},
		{
			name:       "bearish regime already sold emits WAIT",
			state:      signal.State{LastCrossUp: down, LastCrossDown: up, LastStatus: signal.StatusSell},
			want:       signal.StatusWait,
			wantStored: signal.StatusSell,
		},
		{
			name:       "sentinel state waits to buy",
			state:      signal.DefaultState(),
			want:       signal.StatusWait,
			wantStored: signal.StatusSell,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seedStore(t, "AAPL", tc.state)
			machine := NewMachine("AAPL", "AAPL", store)

			event, err := machine.Evaluate(ctx, barDate)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if event.Signal != tc.want {
				t.Errorf("expected %s, got %s", tc.want, event.Signal)
			}
			if event.Ticker != "AAPL" {
				t.Errorf("expected ticker AAPL, got %s", event.Ticker)
			}
			if got := storedState(t, store, "AAPL").LastStatus; got != tc.wantStored {
				t.Errorf("expected stored status %s, got %s", tc.wantStored, got)
			}
		})
	}

	t.Run("transition is not repeated on re-evaluation", func(t *testing.T) {
		store := seedStore(t, "AAPL", signal.State{
			LastCrossUp:   up,
			LastCrossDown: down,
			LastStatus:    signal.StatusSell,
		})
		machine := NewMachine("AAPL", "AAPL", store)

		first, err := machine.Evaluate(ctx, barDate)
		if err != nil {
			t.Fatalf("first evaluate: %v", err)
		}
		second, err := machine.Evaluate(ctx, barDate)
		if err != nil {
			t.Fatalf("second evaluate: %v", err)
		}
		if first.Signal != signal.StatusBuy || second.Signal != signal.StatusHold {
			t.Errorf("expected BUY then HOLD, got %s then %s", first.Signal, second.Signal)
		}
	})

	t.Run("zero date waits without touching state", func(t *testing.T) {
		store := keyvalue.NewMemory(nil) // nothing stored, a read would fail
		machine := NewMachine("AAPL", "AAPL", store)

		event, err := machine.Evaluate(ctx, time.Time{})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if event.Signal != signal.StatusWait {
			t.Errorf("expected WAIT, got %s", event.Signal)
		}
		if !event.Date.IsZero() {
			t.Errorf("expected zero event date, got %s", event.Date)
		}
	})

	t.Run("missing state is an error", func(t *testing.T) {
		machine := NewMachine("AAPL", "AAPL", keyvalue.NewMemory(nil))
		if _, err := machine.Evaluate(ctx, barDate); !errors.Is(err, signal.ErrStateNotFound) {
			t.Errorf("expected ErrStateNotFound, got %v", err)
		}
	})

	t.Run("malformed state is an error", func(t *testing.T) {
		store := keyvalue.NewMemory(map[string]string{"AAPL": "{not json"})
		machine := NewMachine("AAPL", "AAPL", store)
		if _, err := machine.Evaluate(ctx, barDate); !errors.Is(err, signal.ErrStateMalformed) {
			t.Errorf("expected ErrStateMalformed, got %v", err)
		}
	})
}
