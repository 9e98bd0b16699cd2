// Package webhook delivers laboratory events to an external notification
// endpoint. Payloads are signed with HMAC-SHA256 so the receiver can verify
// origin, and delivery is retried a bounded number of times.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	signatureHeader = "X-Lab-Signature"
	eventIDHeader   = "X-Lab-Event-ID"

	maxAttempts = 3
)

// Payload is the JSON body posted to the configured endpoint.
type Payload struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Relay posts signed event payloads to one configured URL.
type Relay struct {
	url     string
	secret  []byte
	client  *http.Client
	logger  zerolog.Logger
	backoff func(attempt int) time.Duration
}

func NewRelay(url, secret string, logger zerolog.Logger) *Relay {
	return &Relay{
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 500 * time.Millisecond
		},
	}
}

// Enabled reports whether a destination URL is configured.
func (r *Relay) Enabled() bool { return r.url != "" }

// Sign computes the hex HMAC-SHA256 signature for a payload body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Deliver posts the payload, retrying on network errors and 5xx responses.
// A 4xx response is treated as permanent and not retried.
func (r *Relay) Deliver(ctx context.Context, p Payload) error {
	if !r.Enabled() {
		return nil
	}
	if p.EventID == "" {
		p.EventID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	signature := Sign(r.secret, body)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := r.post(ctx, body, signature, p.EventID)
		if err == nil && status < 300 {
			r.logger.Debug().
				Str("event_id", p.EventID).
				Str("type", p.Type).
				Int("attempt", attempt).
				Msg("webhook delivered")
			return nil
		}
		if err == nil {
			lastErr = fmt.Errorf("webhook endpoint returned %d", status)
			if status < 500 {
				break
			}
		} else {
			lastErr = err
		}

		r.logger.Warn().
			Err(lastErr).
			Str("event_id", p.EventID).
			Int("attempt", attempt).
			Msg("webhook delivery failed")

		if attempt < maxAttempts {
			select {
			case <-time.After(r.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (r *Relay) post(ctx context.Context, body []byte, signature, eventID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signature)
	req.Header.Set(eventIDHeader, eventID)
	if len(r.secret) > 0 {
		req.Header.Set("Authorization", "Bearer "+string(r.secret))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
