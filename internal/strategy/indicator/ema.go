package indicator

import (
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// Seeding convention: the first w-1 values are undefined, the value at index
// w-1 is the simple average of the first w inputs, and every later value
// applies the recursive smoothing ema[i] = alpha*x[i] + (1-alpha)*ema[i-1]
// with alpha = 2/(w+1). This is the min_periods=span convention; changing it
// shifts every downstream MACD value, so it is fixed here and nowhere else.

// CalculateMACD appends the 12/26 exponential moving averages of the close
// column, the MACD line (ema_12 - ema_26), and the 9-period EMA of the MACD
// line as the signal line.
func CalculateMACD(series market.Series) market.Series {
	out := make(market.Series, len(series))
	copy(out, series)

	closes := series.Closes()
	ema12 := exponentialMean(closes, 12)
	ema26 := exponentialMean(closes, 26)

	macd := make([]*float64, len(series))
	for i := range series {
		if ema12[i] == nil || ema26[i] == nil {
			continue
		}
		v := *ema12[i] - *ema26[i]
		macd[i] = &v
	}

	sig := exponentialMeanOptional(macd, 9)

	for i := range out {
		out[i].EMA12 = ema12[i]
		out[i].EMA26 = ema26[i]
		out[i].MACDLine = macd[i]
		out[i].SignalLine = sig[i]
	}
	return out
}

// exponentialMean computes a w-span EMA with the package seeding convention.
func exponentialMean(values []float64, w int) []*float64 {
	out := make([]*float64, len(values))
	if w <= 0 || len(values) < w {
		return out
	}

	alpha := 2.0 / (float64(w) + 1.0)

	var seed float64
	for i := 0; i < w; i++ {
		seed += values[i]
	}
	seed /= float64(w)
	out[w-1] = &seed

	prev := seed
	for i := w; i < len(values); i++ {
		v := alpha*values[i] + (1-alpha)*prev
		out[i] = &v
		prev = v
	}
	return out
}

// exponentialMeanOptional is exponentialMean over a column that itself has
// undefined leading values (the MACD line). The window starts counting at
// the first defined input.
func exponentialMeanOptional(values []*float64, w int) []*float64 {
	out := make([]*float64, len(values))
	if w <= 0 {
		return out
	}

	start := -1
	for i, v := range values {
		if v != nil {
			start = i
			break
		}
	}
	if start < 0 || len(values)-start < w {
		return out
	}

	alpha := 2.0 / (float64(w) + 1.0)

	var seed float64
	for i := start; i < start+w; i++ {
		seed += *values[i]
	}
	seed /= float64(w)
	out[start+w-1] = &seed

	prev := seed
	for i := start + w; i < len(values); i++ {
		v := alpha*(*values[i]) + (1-alpha)*prev
		out[i] = &v
		prev = v
	}
	return out
}
