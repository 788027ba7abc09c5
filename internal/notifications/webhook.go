package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Karaoke-Go/0.1.0"

// WebhookPublisher POSTs events as JSON. Title and Tags headers follow the
// ntfy conventions so an ntfy topic URL works as a target.
type WebhookPublisher struct {
	endpoint string
	client   *http.Client
}

func NewWebhookPublisher(endpoint string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookPublisher{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (w *WebhookPublisher) Name() string { return "webhook" }

func (w *WebhookPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Title", event.Title())
	req.Header.Set("Tags", strings.Join([]string{"karaoke", strings.ReplaceAll(string(event.Type), ".", "-"), event.QueueID}, ","))
	req.Header.Set("X-Karaoke-Event", string(event.Type))
	req.Header.Set("X-Karaoke-Event-ID", event.ID)
	req.Header.Set("X-Karaoke-Summary", event.Summary())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (w *WebhookPublisher) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
