package crossover

import (
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/indicator"
)

// SMADetector detects 7-day SMA crossing the 21-day SMA, with the 50-day SMA
// as a trend filter on the up side.
type SMADetector struct{}

func (SMADetector) Name() string { return "sma_cross" }

func (SMADetector) Annotate(series market.Series) market.Series {
	return indicator.CalculateSMA(series)
}

func (SMADetector) FastSlow(bar market.Bar) (*float64, *float64) {
	return bar.SMA7, bar.SMA21
}

// StateKey keeps the SMA variant on the bare ticker key.
func (SMADetector) StateKey(ticker string) string { return ticker }

// CheckCrossUp registers a cross-up at bar i iff sma_7 moved from below
// sma_21 on bar i-1 to at-or-above it on bar i, and the close sits above the
// 50-day average. A mechanically true crossover below the 50-day average is
// a bear-market flip and is deliberately not recorded. An exact fast/slow
// tie counts as crossed up, never down, so a tie cannot flip-flop.
func (SMADetector) CheckCrossUp(series market.Series, i int, st signal.State) signal.State {
	if i < 1 || i >= len(series) {
		return st
	}
	cur, prev := series[i], series[i-1]
	if cur.SMA7 == nil || cur.SMA21 == nil || cur.SMA50 == nil ||
		prev.SMA7 == nil || prev.SMA21 == nil {
		return st
	}

	if *cur.SMA7 >= *cur.SMA21 && *prev.SMA7 < *prev.SMA21 && cur.Close > *cur.SMA50 {
		st.LastCrossUp = cur.Date
	}
	return st
}

// CheckCrossDown registers a cross-down at bar i iff sma_7 moved from
// at-or-above sma_21 to below it, and the recorded order shows the last
// event was a cross-up. The ordering guard keeps a cross-down that follows
// a filtered (bear-market) cross-up from being double-counted.
func (SMADetector) CheckCrossDown(series market.Series, i int, st signal.State) signal.State {
	if i < 1 || i >= len(series) {
		return st
	}
	cur, prev := series[i], series[i-1]
	if cur.SMA7 == nil || cur.SMA21 == nil || prev.SMA7 == nil || prev.SMA21 == nil {
		return st
	}

	if *cur.SMA7 < *cur.SMA21 && *prev.SMA7 >= *prev.SMA21 &&
		st.LastCrossDown.Before(st.LastCrossUp) {
		st.LastCrossDown = cur.Date
	}
	return st
}
