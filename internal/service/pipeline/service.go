// Package pipeline drives the live flow per ticker: pull daily bars into the
// history store, keep the persisted crossover state current, and emit trade
// events. Tickers are independent, so the pipeline runs one worker per
// ticker; the state store is the only shared resource and each key has a
// single writer.
package pipeline

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

// historyDepth is how many trailing bars the daily update pulls so the
// 200-day average is defined on the newest bar and its predecessor.
const historyDepth = 202

// Service wires the pipeline's collaborators. All of them are injected;
// the pipeline holds no hidden process-wide state.
type Service struct {
	bars     market.BarRepository
	states   signal.KeyValueRepository
	source   market.PriceSource
	archiver market.Archiver // nil disables archival
	notifier signal.Notifier
	detector crossover.Detector
	workers  int
	log      zerolog.Logger
}

// New builds a pipeline service.
func New(
	bars market.BarRepository,
	states signal.KeyValueRepository,
	source market.PriceSource,
	archiver market.Archiver,
	notifier signal.Notifier,
	detector crossover.Detector,
) *Service {
	return &Service{
		bars:     bars,
		states:   states,
		source:   source,
		archiver: archiver,
		notifier: notifier,
		detector: detector,
		workers:  4,
		log:      log.With().Str("component", "pipeline").Str("strategy", detector.Name()).Logger(),
	}
}
