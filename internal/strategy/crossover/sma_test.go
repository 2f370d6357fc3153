package crossover

import (
	"testing"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func f(v float64) *float64 { return &v }

// smaBar builds an annotated bar with the three averages the detector reads.
func smaBar(n int, close, fast, slow, trend float64) market.Bar {
	return market.Bar{Date: day(n), Close: close, SMA7: f(fast), SMA21: f(slow), SMA50: f(trend)}
}

func TestSMADetectorCheckCrossUp(t *testing.T) {
	det := SMADetector{}

	t.Run("records a cross above the trend filter", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 9, 10, 40),
			smaBar(1, 51, 11, 10, 40),
		}
		st := det.CheckCrossUp(series, 1, signal.DefaultState())
		if !st.LastCrossUp.Equal(day(1)) {
			t.Errorf("expected cross-up on %s, got %s", day(1), st.LastCrossUp)
		}
	})

	t.Run("exact tie counts as crossed up", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 9, 10, 40),
			smaBar(1, 51, 10, 10, 40),
		}
		st := det.CheckCrossUp(series, 1, signal.DefaultState())
		if !st.LastCrossUp.Equal(day(1)) {
			t.Errorf("expected tie to register a cross-up, got %s", st.LastCrossUp)
		}
	})

	t.Run("close below the trend filter drops the cross", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 9, 10, 60),
			smaBar(1, 51, 11, 10, 60),
		}
		before := signal.DefaultState()
		st := det.CheckCrossUp(series, 1, before)
		if st != before {
			t.Error("bear-market crossover must not touch state")
		}
	})

	t.Run("undefined average leaves state unchanged", func(t *testing.T) {
		series := market.Series{
			{Date: day(0), Close: 50, SMA7: f(9), SMA21: f(10)},
			{Date: day(1), Close: 51, SMA7: f(11), SMA21: f(10)},
		}
		before := signal.DefaultState()
		st := det.CheckCrossUp(series, 1, before)
		if st != before {
			t.Error("missing sma_50 must not register a crossover")
		}
	})

	t.Run("six-row sweep records once and stays put", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 7, 10, 40),
			smaBar(1, 51, 8, 10, 40),
			smaBar(2, 52, 9, 10, 40),
			smaBar(3, 53, 11, 10, 40), // fast crosses above slow here
			smaBar(4, 54, 12, 10, 40),
			smaBar(5, 55, 13, 10, 40),
		}
		st := signal.DefaultState()
		for i := 1; i < len(series); i++ {
			st = det.CheckCrossUp(series, i, st)
		}
		if !st.LastCrossUp.Equal(day(3)) {
			t.Errorf("expected cross-up pinned to %s, got %s", day(3), st.LastCrossUp)
		}
	})

	t.Run("no cross without a prior below", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 11, 10, 40),
			smaBar(1, 51, 12, 10, 40),
		}
		before := signal.DefaultState()
		st := det.CheckCrossUp(series, 1, before)
		if st != before {
			t.Error("fast already above slow is not a crossover")
		}
	})
}

func TestSMADetectorCheckCrossDown(t *testing.T) {
	det := SMADetector{}

	crossDown := market.Series{
		smaBar(0, 50, 11, 10, 40),
		smaBar(1, 49, 9, 10, 40),
	}

	t.Run("records after a recorded cross-up", func(t *testing.T) {
		st := signal.State{
			LastCrossUp:   day(-5),
			LastCrossDown: day(-10),
			LastStatus:    signal.StatusBuy,
		}
		st = det.CheckCrossDown(crossDown, 1, st)
		if !st.LastCrossDown.Equal(day(1)) {
			t.Errorf("expected cross-down on %s, got %s", day(1), st.LastCrossDown)
		}
	})

	t.Run("guard drops a down that follows a filtered up", func(t *testing.T) {
		before := signal.DefaultState() // cross-down already newer than cross-up
		st := det.CheckCrossDown(crossDown, 1, before)
		if st != before {
			t.Error("cross-down without a preceding recorded cross-up must be dropped")
		}
	})

	t.Run("tie on the current bar is never a cross-down", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 11, 10, 40),
			smaBar(1, 49, 10, 10, 40),
		}
		before := signal.State{LastCrossUp: day(-5), LastCrossDown: day(-10), LastStatus: signal.StatusBuy}
		st := det.CheckCrossDown(series, 1, before)
		if st != before {
			t.Error("a fast/slow tie must not register a cross-down")
		}
	})

	t.Run("prior tie followed by a drop is a cross-down", func(t *testing.T) {
		series := market.Series{
			smaBar(0, 50, 10, 10, 40),
			smaBar(1, 49, 9, 10, 40),
		}
		st := signal.State{LastCrossUp: day(-5), LastCrossDown: day(-10), LastStatus: signal.StatusBuy}
		st = det.CheckCrossDown(series, 1, st)
		if !st.LastCrossDown.Equal(day(1)) {
			t.Errorf("expected cross-down on %s, got %s", day(1), st.LastCrossDown)
		}
	})
}

func TestSMADetectorStateKey(t *testing.T) {
	if got := (SMADetector{}).StateKey("AAPL"); got != "AAPL" {
		t.Errorf("expected bare ticker key, got %q", got)
	}
}
