// Package marketdata fetches daily bars from the Alpaca market-data API and
// normalizes them into the canonical series shape before they reach the core.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// Compile-time interface check.
var _ market.PriceSource = (*AlpacaSource)(nil)

// AlpacaSource implements market.PriceSource over the Alpaca daily-bar API.
type AlpacaSource struct {
	client *marketdata.Client
	log    zerolog.Logger
}

// NewAlpacaSource creates a source with the given credentials. dataURL may
// be empty to use the default endpoint.
func NewAlpacaSource(apiKey, apiSecret, dataURL string) *AlpacaSource {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaSource{
		client: marketdata.NewClient(opts),
		log:    log.With().Str("source", "alpaca").Logger(),
	}
}

// GetBars fetches daily bars for a ticker in [start, end], returning an
// ascending deduplicated series. Alpaca serves a single split-adjusted
// price series, so adj_close mirrors close.
func (s *AlpacaSource) GetBars(ctx context.Context, ticker string, start, end time.Time) (market.Series, error) {
	bars, err := s.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, fmt.Errorf("ticker %s: alpaca GetBars: %w", ticker, err)
	}

	series := make(market.Series, 0, len(bars))
	for _, b := range bars {
		day := b.Timestamp.UTC()
		series = append(series, market.Bar{
			Date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.Close,
			Volume:   int64(b.Volume),
		})
	}

	series = series.SortAscending().Dedupe()
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}

	s.log.Debug().
		Str("ticker", ticker).
		Int("bars", len(series)).
		Msg("fetched daily bars")

	return series, nil
}
