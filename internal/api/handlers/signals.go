package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryanlattanzi/algo-trading/internal/api/response"
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	"github.com/ryanlattanzi/algo-trading/internal/strategy/crossover"
)

// SignalsHandler exposes the persisted crossover state per ticker.
type SignalsHandler struct {
	states signal.KeyValueRepository
}

// NewSignalsHandler creates a signals handler.
func NewSignalsHandler(states signal.KeyValueRepository) *SignalsHandler {
	return &SignalsHandler{states: states}
}

type signalStateReply struct {
	Ticker        string `json:"ticker"`
	Strategy      string `json:"strategy"`
	LastCrossUp   string `json:"last_cross_up"`
	LastCrossDown string `json:"last_cross_down"`
	LastStatus    string `json:"last_status"`
	Bullish       bool   `json:"bullish"`
}

// Get handles GET /api/signals/{ticker}. The strategy query parameter
// selects the state namespace and defaults to sma_cross. The read is purely
// observational; no state transition happens here.
func (h *SignalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = "sma_cross"
	}

	detector, err := crossover.ByName(strategy)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	raw, err := h.states.Get(r.Context(), detector.StateKey(ticker))
	if errors.Is(err, signal.ErrStateNotFound) {
		response.NotFound(w, r, "no state for ticker "+ticker)
		return
	}
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	st, err := signal.DecodeState(raw)
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	response.Success(w, r, signalStateReply{
		Ticker:        ticker,
		Strategy:      detector.Name(),
		LastCrossUp:   st.LastCrossUp.Format(market.DateFormat),
		LastCrossDown: st.LastCrossDown.Format(market.DateFormat),
		LastStatus:    string(st.LastStatus),
		Bullish:       st.Bullish(),
	})
}
