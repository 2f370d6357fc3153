package signal

import "errors"

var (
	// ErrStateNotFound means the key-value store has no entry for the ticker
	ErrStateNotFound = errors.New("signal state not found")

	// ErrStateMalformed means the persisted payload could not be decoded
	ErrStateMalformed = errors.New("signal state malformed")

	// ErrStateStore wraps key-value store read/write failures
	ErrStateStore = errors.New("signal state store failed")
)
