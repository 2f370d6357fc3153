package signal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// stateWire is the JSON shape stored in the key-value collaborator:
// {"last_cross_up":"YYYY-MM-DD","last_cross_down":"YYYY-MM-DD","last_status":"BUY"}
type stateWire struct {
	LastCrossUp   string `json:"last_cross_up"`
	LastCrossDown string `json:"last_cross_down"`
	LastStatus    string `json:"last_status"`
}

// EncodeState serializes a state to its wire form.
func EncodeState(s State) (string, error) {
	w := stateWire{
		LastCrossUp:   s.LastCrossUp.Format(market.DateFormat),
		LastCrossDown: s.LastCrossDown.Format(market.DateFormat),
		LastStatus:    string(s.LastStatus),
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode signal state: %w", err)
	}
	return string(raw), nil
}

// DecodeState parses the wire form back into a typed state. Any missing or
// malformed field is a decode error; the core never fabricates a default for
// a ticker that is expected to already be tracked.
func DecodeState(raw string) (State, error) {
	var w stateWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrStateMalformed, err)
	}

	up, err := time.Parse(market.DateFormat, w.LastCrossUp)
	if err != nil {
		return State{}, fmt.Errorf("%w: last_cross_up %q", ErrStateMalformed, w.LastCrossUp)
	}
	down, err := time.Parse(market.DateFormat, w.LastCrossDown)
	if err != nil {
		return State{}, fmt.Errorf("%w: last_cross_down %q", ErrStateMalformed, w.LastCrossDown)
	}
	status := Status(w.LastStatus)
	if !status.IsValid() {
		return State{}, fmt.Errorf("%w: last_status %q", ErrStateMalformed, w.LastStatus)
	}

	return State{LastCrossUp: up, LastCrossDown: down, LastStatus: status}, nil
}
