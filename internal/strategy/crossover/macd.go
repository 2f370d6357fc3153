package crossover

import (
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/indicator"
)

// MACDDetector detects the MACD line crossing its 9-period signal line. The
// trend filter is implicit in the MACD-vs-signal relationship; there is no
// separate close-vs-average check and no ordering guard on the down side.
type MACDDetector struct{}

func (MACDDetector) Name() string { return "macd_cross" }

func (MACDDetector) Annotate(series market.Series) market.Series {
	return indicator.CalculateMACD(series)
}

func (MACDDetector) FastSlow(bar market.Bar) (*float64, *float64) {
	return bar.MACDLine, bar.SignalLine
}

// StateKey namespaces MACD state away from the SMA variant.
func (MACDDetector) StateKey(ticker string) string { return "macd:" + ticker }

// divergence is macd_line - signal_line for a bar; nil while either leg is
// still undefined.
func divergence(bar market.Bar) *float64 {
	if bar.MACDLine == nil || bar.SignalLine == nil {
		return nil
	}
	v := *bar.MACDLine - *bar.SignalLine
	return &v
}

// CheckCrossUp registers a cross-up at bar i iff the divergence turned
// positive after being at or below zero on bar i-1.
func (MACDDetector) CheckCrossUp(series market.Series, i int, st signal.State) signal.State {
	if i < 1 || i >= len(series) {
		return st
	}
	cur, prev := divergence(series[i]), divergence(series[i-1])
	if cur == nil || prev == nil {
		return st
	}

	if *cur > 0 && *prev <= 0 {
		st.LastCrossUp = series[i].Date
	}
	return st
}

// CheckCrossDown registers a cross-down at bar i iff the divergence turned
// negative after being at or above zero on bar i-1.
func (MACDDetector) CheckCrossDown(series market.Series, i int, st signal.State) signal.State {
	if i < 1 || i >= len(series) {
		return st
	}
	cur, prev := divergence(series[i]), divergence(series[i-1])
	if cur == nil || prev == nil {
		return st
	}

	if *cur < 0 && *prev >= 0 {
		st.LastCrossDown = series[i].Date
	}
	return st
}
