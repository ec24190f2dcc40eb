// Package deleter talks to, and implements, the storage-deletion intermediary:
// a small HTTP function that holds the external object store credentials and
// removes one key per call.
package deleter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"photoapi/internal/config"
)

// Remover deletes a single object from the external store.
type Remover interface {
	Remove(ctx context.Context, key string) error
}

// StatusError is a non-2xx answer from the intermediary.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("intermediary returned %d: %s", e.Code, e.Message)
}

// Request is the body accepted by the intermediary.
type Request struct {
	Key string `json:"key"`
}

// Response is the body returned by the intermediary.
type Response struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client calls the intermediary over HTTP.
type Client struct {
	url         string
	apiKey      string
	http        *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient builds a client from configuration. MaxAttempts below 1 is treated as 1.
func NewClient(cfg config.IntermediaryConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("intermediary url is required")
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http: &http.Client{
			Timeout:   config.Duration(cfg.TimeoutSec),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxAttempts: attempts,
		retryDelay:  500 * time.Millisecond,
	}, nil
}

var _ Remover = (*Client)(nil)

// Remove asks the intermediary to delete key. Transport errors and 5xx
// answers are retried up to the configured attempts; 4xx answers are final.
func (c *Client) Remove(ctx context.Context, key string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryDelay
	b.Reset()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.removeOnce(ctx, key)
		var se *StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(c.maxAttempts)))
	return err
}

func (c *Client) removeOnce(ctx context.Context, key string) error {
	payload, err := json.Marshal(Request{Key: key})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out Response
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unexpected response"
		}
		return backoff.Permanent(fmt.Errorf("intermediary did not confirm deletion: %s", msg))
	}
	return nil
}
