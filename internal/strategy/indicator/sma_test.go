package indicator

import (
	"testing"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

func seriesFromCloses(closes []float64) market.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(market.Series, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{Date: base.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestCalculateSMA(t *testing.T) {
	t.Run("window fills after w-1 bars", func(t *testing.T) {
		series := seriesFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		out := CalculateSMA(series)

		for i := 0; i < 6; i++ {
			if out[i].SMA7 != nil {
				t.Errorf("index %d: expected undefined sma_7, got %v", i, *out[i].SMA7)
			}
		}
		if out[6].SMA7 == nil || *out[6].SMA7 != 4 {
			t.Errorf("index 6: expected sma_7 = 4, got %v", out[6].SMA7)
		}
		if out[7].SMA7 == nil || *out[7].SMA7 != 5 {
			t.Errorf("index 7: expected sma_7 = 5, got %v", out[7].SMA7)
		}
	})

	t.Run("short series keeps wide windows undefined", func(t *testing.T) {
		series := seriesFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8})
		out := CalculateSMA(series)

		for i := range out {
			if out[i].SMA21 != nil {
				t.Errorf("index %d: expected undefined sma_21 on 8 bars", i)
			}
			if out[i].SMA200 != nil {
				t.Errorf("index %d: expected undefined sma_200 on 8 bars", i)
			}
		}
	})

	t.Run("input series is untouched", func(t *testing.T) {
		series := seriesFromCloses([]float64{1, 2, 3, 4, 5, 6, 7})
		_ = CalculateSMA(series)

		for i := range series {
			if series[i].SMA7 != nil {
				t.Errorf("index %d: input series gained an sma_7 column", i)
			}
		}
	})

	t.Run("deterministic over repeated calls", func(t *testing.T) {
		series := seriesFromCloses([]float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3})
		a := CalculateSMA(series)
		b := CalculateSMA(series)

		for i := range a {
			if (a[i].SMA7 == nil) != (b[i].SMA7 == nil) {
				t.Fatalf("index %d: definedness differs between runs", i)
			}
			if a[i].SMA7 != nil && *a[i].SMA7 != *b[i].SMA7 {
				t.Errorf("index %d: %v != %v", i, *a[i].SMA7, *b[i].SMA7)
			}
		}
	})
}

func TestRollingMean(t *testing.T) {
	t.Run("running sum matches direct mean", func(t *testing.T) {
		values := []float64{2, 4, 6, 8, 10, 12}
		out := rollingMean(values, 3)

		want := []float64{4, 6, 8, 10}
		for i, w := range want {
			got := out[i+2]
			if got == nil || *got != w {
				t.Errorf("index %d: expected %v, got %v", i+2, w, got)
			}
		}
	})

	t.Run("window larger than input yields all undefined", func(t *testing.T) {
		out := rollingMean([]float64{1, 2}, 3)
		for i, v := range out {
			if v != nil {
				t.Errorf("index %d: expected nil, got %v", i, *v)
			}
		}
	})
}
