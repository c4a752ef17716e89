package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPublisher posts alerts as one JSON document.
type WebhookPublisher struct {
	url    string
	client *http.Client
}

// NewWebhookPublisher creates a webhook publisher. A zero timeout uses 10s.
func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookPublisher{url: url, client: &http.Client{Timeout: timeout}}
}

// Name implements Publisher
func (p *WebhookPublisher) Name() string {
	return "webhook"
}

// Publish implements Publisher
func (p *WebhookPublisher) Publish(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{"alerts": alerts})
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	return p.post(ctx, body)
}

func (p *WebhookPublisher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Close implements Publisher
func (p *WebhookPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
