// Package indicator computes moving-average columns over a price series.
// Every transform is pure: it returns a new annotated series and leaves the
// input untouched, so repeated calls on the same input are deterministic.
package indicator

import (
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// CalculateSMA appends the 7/21/50/200 trading-day simple moving averages of
// the close column. The w-window value at index i is the arithmetic mean of
// closes[i-w+1..i]; indices below w-1 stay undefined (nil).
func CalculateSMA(series market.Series) market.Series {
	out := make(market.Series, len(series))
	copy(out, series)

	closes := series.Closes()
	sma7 := rollingMean(closes, 7)
	sma21 := rollingMean(closes, 21)
	sma50 := rollingMean(closes, 50)
	sma200 := rollingMean(closes, 200)

	for i := range out {
		out[i].SMA7 = sma7[i]
		out[i].SMA21 = sma21[i]
		out[i].SMA50 = sma50[i]
		out[i].SMA200 = sma200[i]
	}
	return out
}

// rollingMean computes a trailing w-value mean with nil for the first w-1
// slots. A running sum keeps the pass linear.
func rollingMean(values []float64, w int) []*float64 {
	out := make([]*float64, len(values))
	if w <= 0 || len(values) < w {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= w {
			sum -= values[i-w]
		}
		if i >= w-1 {
			mean := sum / float64(w)
			out[i] = &mean
		}
	}
	return out
}
