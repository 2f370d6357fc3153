package signal

import "context"

// KeyValueRepository is the durable per-ticker state store. Values are the
// JSON wire form produced by EncodeState. The concurrency contract is
// last-writer-wins per key with a single live writer per ticker; callers run
// at most one evaluation pipeline per ticker at a time.
type KeyValueRepository interface {
	// Get returns the stored value for key, or ErrStateNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// Notifier receives trade events from the live pipeline. Implementations
// format and deliver alerts; the core only hands over the event.
type Notifier interface {
	Notify(ctx context.Context, event TradeEvent) error
}
