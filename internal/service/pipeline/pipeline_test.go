package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/infra/keyvalue"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

// fakeBars is an in-memory BarRepository for pipeline tests.
type fakeBars struct {
	data map[string]market.Series
}

func newFakeBars() *fakeBars {
	return &fakeBars{data: make(map[string]market.Series)}
}

func (f *fakeBars) EnsureTicker(_ context.Context, ticker string) (bool, error) {
	if _, ok := f.data[ticker]; ok {
		return false, nil
	}
	f.data[ticker] = market.Series{}
	return true, nil
}

func (f *fakeBars) Append(_ context.Context, ticker string, series market.Series) error {
	f.data[ticker] = append(f.data[ticker], series...)
	return nil
}

func (f *fakeBars) GetDaysBack(_ context.Context, ticker string, n int) (market.Series, error) {
	s, err := f.series(ticker)
	if err != nil {
		return nil, err
	}
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s, nil
}

func (f *fakeBars) GetSinceDate(_ context.Context, ticker string, since time.Time) (market.Series, error) {
	s, err := f.series(ticker)
	if err != nil {
		return nil, err
	}
	out := market.Series{}
	for _, b := range s {
		if !b.Date.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBars) GetUntilDate(_ context.Context, ticker string, until time.Time) (market.Series, error) {
	s, err := f.series(ticker)
	if err != nil {
		return nil, err
	}
	out := market.Series{}
	for _, b := range s {
		if !b.Date.After(until) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBars) GetBetweenDates(_ context.Context, ticker string, start, end time.Time) (market.Series, error) {
	s, err := f.GetSinceDate(context.Background(), ticker, start)
	if err != nil {
		return nil, err
	}
	out := market.Series{}
	for _, b := range s {
		if !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBars) GetAll(_ context.Context, ticker string) (market.Series, error) {
	return f.series(ticker)
}

func (f *fakeBars) MostRecentDate(_ context.Context, ticker string) (time.Time, error) {
	s, err := f.series(ticker)
	if err != nil {
		return time.Time{}, err
	}
	if len(s) == 0 {
		return time.Time{}, market.ErrEmptySeries
	}
	return s[len(s)-1].Date, nil
}

func (f *fakeBars) series(ticker string) (market.Series, error) {
	s, ok := f.data[ticker]
	if !ok {
		return nil, market.ErrTickerNotFound
	}
	return s, nil
}

// fakeSource serves a canned series clipped to the requested window.
type fakeSource struct {
	series market.Series
}

func (f *fakeSource) GetBars(_ context.Context, _ string, start, end time.Time) (market.Series, error) {
	out := market.Series{}
	for _, b := range f.series {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeNotifier records delivered events.
type fakeNotifier struct {
	events []signal.TradeEvent
}

func (f *fakeNotifier) Notify(_ context.Context, event signal.TradeEvent) error {
	f.events = append(f.events, event)
	return nil
}

// trendSeries declines for downDays then rallies for upDays, which takes the
// fast average below and then decisively above the slow one.
func trendSeries(downDays, upDays int) market.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(market.Series, 0, downDays+upDays)
	price := 100.0
	for i := 0; i < downDays; i++ {
		price -= 0.5
		out = append(out, market.Bar{Date: base.AddDate(0, 0, i), Close: price, AdjClose: price})
	}
	for i := 0; i < upDays; i++ {
		price += 5
		out = append(out, market.Bar{Date: base.AddDate(0, 0, downDays+i), Close: price, AdjClose: price})
	}
	return out
}

func newTestService(bars market.BarRepository, states signal.KeyValueRepository, source market.PriceSource, notifier signal.Notifier) *Service {
	return New(bars, states, source, nil, notifier, crossover.SMADetector{})
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()

	t.Run("replay of a rally ends bullish and bought", func(t *testing.T) {
		bars := newFakeBars()
		bars.data["TEST"] = trendSeries(60, 30)
		states := keyvalue.NewMemory(nil)
		svc := newTestService(bars, states, &fakeSource{}, &fakeNotifier{})

		if err := svc.Backfill(ctx, "TEST"); err != nil {
			t.Fatalf("backfill: %v", err)
		}

		raw, err := states.Get(ctx, "TEST")
		if err != nil {
			t.Fatalf("get state: %v", err)
		}
		st, err := signal.DecodeState(raw)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if !st.Bullish() {
			t.Errorf("expected a bullish state after the rally, got %+v", st)
		}
		if st.LastStatus != signal.StatusBuy {
			t.Errorf("expected last status BUY, got %s", st.LastStatus)
		}
		rallyStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 60)
		if st.LastCrossUp.Before(rallyStart) {
			t.Errorf("cross-up %s should fall inside the rally", st.LastCrossUp)
		}
	})

	t.Run("pure decline ends bearish and sold", func(t *testing.T) {
		bars := newFakeBars()
		bars.data["TEST"] = trendSeries(80, 0)
		states := keyvalue.NewMemory(nil)
		svc := newTestService(bars, states, &fakeSource{}, &fakeNotifier{})

		if err := svc.Backfill(ctx, "TEST"); err != nil {
			t.Fatalf("backfill: %v", err)
		}

		raw, _ := states.Get(ctx, "TEST")
		st, err := signal.DecodeState(raw)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if st.Bullish() {
			t.Errorf("expected a bearish state, got %+v", st)
		}
		if st.LastStatus != signal.StatusSell {
			t.Errorf("expected last status SELL, got %s", st.LastStatus)
		}
	})

	t.Run("empty history is an error", func(t *testing.T) {
		bars := newFakeBars()
		bars.data["TEST"] = market.Series{}
		svc := newTestService(bars, keyvalue.NewMemory(nil), &fakeSource{}, &fakeNotifier{})
		if err := svc.Backfill(ctx, "TEST"); err == nil {
			t.Error("expected an error for an empty history")
		}
	})
}

func TestPullSeedsNewTickers(t *testing.T) {
	ctx := context.Background()
	series := trendSeries(60, 30)
	last := series[len(series)-1].Date

	bars := newFakeBars()
	states := keyvalue.NewMemory(nil)
	svc := newTestService(bars, states, &fakeSource{series: series}, &fakeNotifier{})

	if err := svc.Pull(ctx, []string{"TEST"}, last); err != nil {
		t.Fatalf("pull: %v", err)
	}

	stored, err := bars.GetAll(ctx, "TEST")
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(stored) != len(series) {
		t.Errorf("expected %d bars stored, got %d", len(series), len(stored))
	}
	if _, err := states.Get(ctx, "TEST"); err != nil {
		t.Errorf("expected a seeded state for the new ticker: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing state for a tracked ticker is an error", func(t *testing.T) {
		bars := newFakeBars()
		bars.data["TEST"] = trendSeries(60, 30)
		svc := newTestService(bars, keyvalue.NewMemory(nil), &fakeSource{}, &fakeNotifier{})

		if err := svc.Update(ctx, "TEST"); err == nil {
			t.Error("expected an error when no state is seeded")
		}
	})

	t.Run("unchanged state is not rewritten", func(t *testing.T) {
		bars := newFakeBars()
		bars.data["TEST"] = trendSeries(80, 0) // declining, no crossover on the last bar

		st := signal.DefaultState()
		encoded, err := signal.EncodeState(st)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		states := keyvalue.NewMemory(map[string]string{"TEST": encoded})
		svc := newTestService(bars, states, &fakeSource{}, &fakeNotifier{})

		if err := svc.Update(ctx, "TEST"); err != nil {
			t.Fatalf("update: %v", err)
		}
		raw, _ := states.Get(ctx, "TEST")
		if raw != encoded {
			t.Errorf("expected state untouched, got %s", raw)
		}
	})
}

func TestEvaluateTicker(t *testing.T) {
	ctx := context.Background()
	series := trendSeries(60, 30)
	last := series[len(series)-1].Date

	setup := func(t *testing.T, lastStatus signal.Status) (*Service, *keyvalue.Memory, *fakeNotifier) {
		t.Helper()
		bars := newFakeBars()
		bars.data["TEST"] = series

		st := signal.State{
			LastCrossUp:   last.AddDate(0, 0, -3),
			LastCrossDown: last.AddDate(0, 0, -30),
			LastStatus:    lastStatus,
		}
		encoded, err := signal.EncodeState(st)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		states := keyvalue.NewMemory(map[string]string{"TEST": encoded})
		notifier := &fakeNotifier{}
		return newTestService(bars, states, &fakeSource{}, notifier), states, notifier
	}

	t.Run("actionable decision is delivered", func(t *testing.T) {
		svc, _, notifier := setup(t, signal.StatusSell)

		event, err := svc.EvaluateTicker(ctx, "TEST", last)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if event.Signal != signal.StatusBuy {
			t.Errorf("expected BUY, got %s", event.Signal)
		}
		if len(notifier.events) != 1 || notifier.events[0].Signal != signal.StatusBuy {
			t.Errorf("expected one BUY notification, got %v", notifier.events)
		}
	})

	t.Run("no-op decision is not delivered", func(t *testing.T) {
		svc, _, notifier := setup(t, signal.StatusBuy)

		event, err := svc.EvaluateTicker(ctx, "TEST", last)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if event.Signal != signal.StatusHold {
			t.Errorf("expected HOLD, got %s", event.Signal)
		}
		if len(notifier.events) != 0 {
			t.Errorf("expected no notifications, got %v", notifier.events)
		}
	})

	t.Run("missing bar for the evaluation date waits", func(t *testing.T) {
		svc, _, notifier := setup(t, signal.StatusSell)

		event, err := svc.EvaluateTicker(ctx, "TEST", last.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if event.Signal != signal.StatusWait {
			t.Errorf("expected WAIT, got %s", event.Signal)
		}
		if !event.Date.IsZero() {
			t.Errorf("expected a zero event date, got %s", event.Date)
		}
		if len(notifier.events) != 0 {
			t.Errorf("expected no notifications, got %v", notifier.events)
		}
	})
}
