// Package notify delivers trade events to the outside world.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
)

// Compile-time interface checks.
var _ signal.Notifier = (*LogNotifier)(nil)
var _ signal.Notifier = (*WebhookNotifier)(nil)

// LogNotifier writes events to the application log. It is the default when
// no webhook is configured.
type LogNotifier struct{}

// Notify logs the event.
func (LogNotifier) Notify(_ context.Context, event signal.TradeEvent) error {
	log.Info().
		Str("event_id", event.EventID.String()).
		Str("ticker", event.Ticker).
		Str("signal", string(event.Signal)).
		Str("date", event.DateString()).
		Msg("trade event")
	return nil
}

// WebhookNotifier POSTs each event as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given endpoint.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify delivers the event, treating any non-2xx response as an error.
func (n *WebhookNotifier) Notify(ctx context.Context, event signal.TradeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode trade event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
