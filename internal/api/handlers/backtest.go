package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ryanlattanzi/algo-trading/internal/api/response"
	backtestdomain "github.com/ryanlattanzi/algo-trading/internal/domain/backtest"
	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
	"github.com/ryanlattanzi/algo-trading/internal/pkg/metrics"
	backtestsvc "github.com/ryanlattanzi/algo-trading/internal/service/backtest"
)

// BacktestHandler runs strategy simulations over stored history.
type BacktestHandler struct {
	runner *backtestsvc.Runner
}

// NewBacktestHandler creates a backtest handler.
func NewBacktestHandler(runner *backtestsvc.Runner) *BacktestHandler {
	return &BacktestHandler{runner: runner}
}

// backtestRequest is the POST /api/backtest payload. Either a period preset
// or explicit dates select the window; explicit dates win.
type backtestRequest struct {
	Ticker          string          `json:"ticker"`
	Strategy        string          `json:"strategy"`
	Period          string          `json:"period"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	StartingCapital decimal.Decimal `json:"starting_capital"`
}

type backtestReply struct {
	Result backtestdomain.Result    `json:"result"`
	Trades backtestdomain.TradeBook `json:"trades"`
}

// Run handles POST /api/backtest.
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var payload backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	req, err := payload.toDomain()
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	result, trades, err := h.runner.Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrTickerNotFound), errors.Is(err, market.ErrEmptySeries):
			response.NotFound(w, r, err.Error())
		default:
			response.InternalError(w, r, err)
		}
		return
	}

	metrics.BacktestsRun.WithLabelValues(string(req.Strategy)).Inc()
	response.Success(w, r, backtestReply{Result: result, Trades: trades})
}

func (p backtestRequest) toDomain() (backtestdomain.Request, error) {
	req := backtestdomain.Request{
		Ticker:          p.Ticker,
		Strategy:        backtestdomain.StrategySMACross,
		StartingCapital: p.StartingCapital,
	}
	if p.Strategy != "" {
		req.Strategy = backtestdomain.Strategy(p.Strategy)
	}

	if p.Period != "" {
		if days, bounded := backtestdomain.Period(p.Period).Days(); bounded {
			req.StartDate = time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
		} else if backtestdomain.Period(p.Period) != backtestdomain.PeriodMax {
			return backtestdomain.Request{}, errors.New("unknown period preset")
		}
	}
	if p.StartDate != "" {
		start, err := time.Parse(market.DateFormat, p.StartDate)
		if err != nil {
			return backtestdomain.Request{}, errors.New("start_date must be YYYY-MM-DD")
		}
		req.StartDate = start
	}
	if p.EndDate != "" {
		end, err := time.Parse(market.DateFormat, p.EndDate)
		if err != nil {
			return backtestdomain.Request{}, errors.New("end_date must be YYYY-MM-DD")
		}
		req.EndDate = end
	}

	return req, req.Validate()
}
