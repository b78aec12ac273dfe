package display

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shinosaki/sparkup-push-go/host"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

const webhookTimeout = 10 * time.Second

// WebhookMessage is the JSON document posted to the relay.
type WebhookMessage struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Icon     string         `json:"icon"`
	Data     map[string]any `json:"data"`
	ShownAt  time.Time      `json:"shown_at"`
	ClickURL string         `json:"click_url,omitempty"`
}

// WebhookDisplayer forwards notifications to a relay (a desktop or phone
// notifier) which calls ClickURL back when the user clicks one.
type WebhookDisplayer struct {
	url          string
	callbackBase string
	client       *http.Client
	logger       *zap.Logger
}

// NewHTTPClient returns a client that negotiates HTTP/2 over TLS and falls
// back to HTTP/1.1.
func NewHTTPClient() (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("configure http2 transport: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   webhookTimeout,
	}, nil
}

// NewWebhookDisplayer posts to url. callbackBase, when set, is the public
// base URL of the callback API and is used to build ClickURL.
func NewWebhookDisplayer(url, callbackBase string, client *http.Client, logger *zap.Logger) *WebhookDisplayer {
	return &WebhookDisplayer{
		url:          url,
		callbackBase: strings.TrimRight(callbackBase, "/"),
		client:       client,
		logger:       logger.Named("webhook"),
	}
}

func (d *WebhookDisplayer) Display(ctx context.Context, n *host.Notification) error {
	msg := WebhookMessage{
		ID:      n.ID,
		Title:   n.Title,
		Body:    n.Body,
		Icon:    n.Icon,
		Data:    n.Data,
		ShownAt: n.ShownAt,
	}
	if d.callbackBase != "" {
		msg.ClickURL = d.callbackBase + "/notifications/" + n.ID + "/click"
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("invalid http status: %d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}

	d.logger.Debug("notification forwarded", zap.String("id", n.ID), zap.String("proto", res.Proto))
	return nil
}
