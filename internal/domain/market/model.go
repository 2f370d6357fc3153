package market

import (
	"sort"
	"time"
)

// DateFormat is the canonical wire format for bar dates.
const DateFormat = "2006-01-02"

// Column names as they appear in the bar store and in raw pulls.
const (
	ColDate     = "date"
	ColOpen     = "open"
	ColHigh     = "high"
	ColLow      = "low"
	ColClose    = "close"
	ColAdjClose = "adj_close"
	ColVolume   = "volume"
)

// Columns returns the canonical raw column order for a pull.
func Columns() []string {
	return []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume}
}

// SMAWindows are the trading-day windows computed for every annotated series.
var SMAWindows = []int{7, 21, 50, 200}

// Bar represents a single daily OHLCV observation plus the moving-average
// columns appended by the indicator package. A nil pointer means the value
// is undefined because the window has not filled yet; it is never coerced
// to zero.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`

	SMA7   *float64 `json:"sma_7,omitempty"`
	SMA21  *float64 `json:"sma_21,omitempty"`
	SMA50  *float64 `json:"sma_50,omitempty"`
	SMA200 *float64 `json:"sma_200,omitempty"`

	EMA12      *float64 `json:"ema_12,omitempty"`
	EMA26      *float64 `json:"ema_26,omitempty"`
	MACDLine   *float64 `json:"macd_line,omitempty"`
	SignalLine *float64 `json:"signal_line,omitempty"`
}

// Series is an ordered sequence of bars, strictly ascending by date with no
// duplicate dates. The crossover logic depends on that ordering; Validate
// enforces it at the boundary before a series reaches the core.
type Series []Bar

// Validate rejects out-of-order or duplicate-date series. Boundary layers
// must call this before handing a series to the strategy or backtest code.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return &OrderError{Index: i, Date: s[i].Date, Prev: s[i-1].Date}
		}
	}
	return nil
}

// Dedupe drops bars whose date repeats an earlier bar, keeping the first
// occurrence. Raw pulls occasionally repeat the most recent session.
func (s Series) Dedupe() Series {
	seen := make(map[string]bool, len(s))
	out := make(Series, 0, len(s))
	for _, b := range s {
		key := b.Date.Format(DateFormat)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

// SortAscending returns a copy of the series sorted ascending by date.
func (s Series) SortAscending() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// First returns the first bar; ok is false for an empty series.
func (s Series) First() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[0], true
}

// Last returns the last bar; ok is false for an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}
