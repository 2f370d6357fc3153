package indicator

import (
	"math"
	"testing"
)

func TestExponentialMean(t *testing.T) {
	t.Run("seed is the simple average of the first window", func(t *testing.T) {
		out := exponentialMean([]float64{1, 2, 3, 4, 5}, 3)

		if out[0] != nil || out[1] != nil {
			t.Error("expected the first two values undefined")
		}
		if out[2] == nil || *out[2] != 2 {
			t.Fatalf("expected seed 2 at index 2, got %v", out[2])
		}
		// alpha = 2/(3+1) = 0.5
		if out[3] == nil || *out[3] != 3 {
			t.Errorf("expected 3 at index 3, got %v", out[3])
		}
		if out[4] == nil || *out[4] != 4 {
			t.Errorf("expected 4 at index 4, got %v", out[4])
		}
	})

	t.Run("constant input stays constant", func(t *testing.T) {
		values := make([]float64, 20)
		for i := range values {
			values[i] = 10
		}
		out := exponentialMean(values, 12)
		for i := 11; i < len(out); i++ {
			if out[i] == nil || math.Abs(*out[i]-10) > 1e-12 {
				t.Errorf("index %d: expected 10, got %v", i, out[i])
			}
		}
	})
}

func TestExponentialMeanOptional(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("window counts from the first defined input", func(t *testing.T) {
		values := []*float64{nil, nil, f(1), f(2), f(3), f(4)}
		out := exponentialMeanOptional(values, 3)

		for i := 0; i < 4; i++ {
			if out[i] != nil {
				t.Errorf("index %d: expected undefined, got %v", i, *out[i])
			}
		}
		if out[4] == nil || *out[4] != 2 {
			t.Fatalf("expected seed 2 at index 4, got %v", out[4])
		}
		if out[5] == nil || *out[5] != 3 {
			t.Errorf("expected 3 at index 5, got %v", out[5])
		}
	})

	t.Run("all undefined input yields all undefined output", func(t *testing.T) {
		out := exponentialMeanOptional([]*float64{nil, nil, nil}, 2)
		for i, v := range out {
			if v != nil {
				t.Errorf("index %d: expected nil", i)
			}
		}
	})
}

func TestCalculateMACD(t *testing.T) {
	t.Run("column definedness follows the windows", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = float64(i + 1)
		}
		out := CalculateMACD(seriesFromCloses(closes))

		if out[10].EMA12 != nil {
			t.Error("ema_12 defined before index 11")
		}
		if out[11].EMA12 == nil {
			t.Error("ema_12 undefined at index 11")
		}
		if out[24].MACDLine != nil {
			t.Error("macd_line defined before index 25")
		}
		if out[25].MACDLine == nil {
			t.Error("macd_line undefined at index 25")
		}
		if out[32].SignalLine != nil {
			t.Error("signal_line defined before index 33")
		}
		if out[33].SignalLine == nil {
			t.Error("signal_line undefined at index 33")
		}
	})

	t.Run("flat prices give zero macd and signal", func(t *testing.T) {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = 50
		}
		out := CalculateMACD(seriesFromCloses(closes))

		for i := 25; i < len(out); i++ {
			if math.Abs(*out[i].MACDLine) > 1e-12 {
				t.Errorf("index %d: expected macd 0, got %v", i, *out[i].MACDLine)
			}
		}
		for i := 33; i < len(out); i++ {
			if math.Abs(*out[i].SignalLine) > 1e-12 {
				t.Errorf("index %d: expected signal 0, got %v", i, *out[i].SignalLine)
			}
		}
	})
}
