package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/queue"
)

// WebhookSender POSTs status events as JSON to an HTTP endpoint, e.g. the
// messaging gateway that texts the customer.
type WebhookSender struct {
	url    string
	client *http.Client
}

// NewWebhookSender returns a sender with a 10s client timeout when client
// is nil.
func NewWebhookSender(url string, client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{url: url, client: client}
}

// Notify delivers ev.  Any non-2xx response is an error.
func (w *WebhookSender) Notify(ctx context.Context, ev model.StatusEvent) error {
	body, err := queue.Encode(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.BookingCode+":"+ev.Status+":"+ev.PaymentStatus)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Forwarder returns the notify-worker handler: events go to the webhook
// when url is set and are logged either way.
func Forwarder(url string, client *http.Client, log *zap.Logger) queue.Handler {
	sink := NewLogNotifier(log)
	var hook *WebhookSender
	if url != "" {
		hook = NewWebhookSender(url, client)
	}
	return func(ctx context.Context, ev model.StatusEvent) error {
		if hook != nil {
			if err := hook.Notify(ctx, ev); err != nil {
				return err
			}
		}
		return sink.Notify(ctx, ev)
	}
}
