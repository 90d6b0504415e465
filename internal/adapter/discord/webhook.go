package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"autotask-relay/internal/domain/model"
	"autotask-relay/internal/domain/ports"
)

// maxContentLength is Discord's limit for the message content field.
const maxContentLength = 2000

// Webhook posts plain-content messages to a Discord-compatible webhook.
type Webhook struct {
	httpClient *http.Client
	logger     ports.Logger
}

var _ ports.Deliverer = (*Webhook)(nil)

// NewWebhook creates a new webhook transport.
func NewWebhook(timeout time.Duration, logger ports.Logger) *Webhook {
	return &Webhook{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// message is the JSON body accepted by the webhook.
type message struct {
	Content string `json:"content"`
}

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	StatusCode int
	Body       string
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// RetryAfter returns the wait requested by the server through the Retry-After header.
func (e *StatusError) RetryAfter() time.Duration {
	return e.retryAfter
}

// NetworkError reports a failure to get any response from the webhook.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "perform request: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Deliver performs a single POST of req.MessageBody to req.DestinationURL.
func (w *Webhook) Deliver(ctx context.Context, req model.DeliveryRequest) error {
	body, err := json.Marshal(message{Content: truncate(req.MessageBody, maxContentLength)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.DestinationURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if w.logger != nil {
		w.logger.Debug(ctx, "webhook accepted message", "status", resp.StatusCode)
	}
	return nil
}

// IsRetryable reports whether err is a transient delivery failure: the
// request never got a response, or the webhook rate-limited it. POST is not
// idempotent, so 5xx responses are not retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(value string, limit int) string {
	if len([]rune(value)) <= limit {
		return value
	}
	runes := []rune(value)
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
