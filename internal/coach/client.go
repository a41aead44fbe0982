// Package coach calls the remote AI coaching functions. The functions are opaque:
// JSON goes in, JSON comes out, and the models behind them are not our concern.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrDisabled is returned by every call when no base URL is configured.
var ErrDisabled = errors.New("coach functions not configured")

// Function names.
const (
	FuncNutrition       = "nutrition-coach"
	FuncMobility        = "mobility-coach"
	FuncWorkoutFeedback = "workout-feedback"
)

const maxAttempts = 3

// StatusError is a non-2xx response from a coach function.
type StatusError struct {
	Function string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Function, e.Status, e.Body)
}

// Client invokes coach functions at {baseURL}/functions/v1/{name}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	// backoff returns the wait before the given retry (1-based).
	backoff func(retry int) time.Duration
}

// New creates a client. An empty baseURL yields a client whose calls return ErrDisabled.
func New(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		backoff: func(retry int) time.Duration {
			return time.Duration(1<<uint(retry-1)) * time.Second
		},
	}
}

// Enabled reports whether calls will reach a remote endpoint.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Invoke POSTs in as JSON to the named function and decodes the response into out.
// Transport errors and 5xx responses are retried up to 3 attempts with exponential
// backoff; 4xx responses fail immediately.
func (c *Client) Invoke(ctx context.Context, name string, in, out any) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", name, err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
			c.log.Warn("retrying coach function", "function", name, "attempt", attempt+1, "error", lastErr)
		}

		body, err := c.post(ctx, name, data)
		if err == nil {
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", name, err)
			}
			return nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && se.Status < 500 {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, name string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/functions/v1/"+name, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Function: name, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
