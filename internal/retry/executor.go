package retry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
)

// Response is a fully drained HTTP response, safe to inspect after the
// underlying connection has been returned to the pool.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Config holds executor dependencies. Clock and Jitter are injectable for
// tests; nil means real clock and math/rand.
type Config struct {
	Client *http.Client
	Clock  clockwork.Clock
	Jitter func() float64
}

// Executor wraps single HTTP calls with a retry policy. Retryable statuses
// and network faults are retried under capped exponential backoff with
// jitter; a server-provided Retry-After hint takes precedence over the
// computed delay.
type Executor struct {
	client *http.Client
	clock  clockwork.Clock
	jitter func() float64
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Executor {
	e := &Executor{
		client: cfg.Client,
		clock:  cfg.Clock,
		jitter: cfg.Jitter,
		logger: logger,
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.jitter == nil {
		e.jitter = rand.Float64
	}
	return e
}

// Do performs the request described by method, url, header and body,
// retrying under the policy. The body is replayed from scratch on every
// attempt. Success (status < 400) returns immediately; a non-retryable
// status fails immediately; anything else is retried until the budget is
// spent, after which the last failure surfaces in an ExhaustedError.
func (e *Executor) Do(ctx context.Context, method, url string, header http.Header, body []byte, policy Policy) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		resp, err := e.attempt(ctx, method, url, header, body, attempt)
		if err != nil {
			lastErr = err
			if attempt == policy.MaxAttempts {
				break
			}
			if err := e.sleep(ctx, policy.backoff(attempt, e.jitter())); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 400 {
			return resp, nil
		}

		if !retryable(resp.StatusCode) {
			return nil, fmt.Errorf("%s %s: %w", method, url, &ClientError{StatusCode: resp.StatusCode})
		}

		lastErr = &ServerError{StatusCode: resp.StatusCode}
		if attempt == policy.MaxAttempts {
			break
		}

		delay, ok := retryAfter(resp.Header)
		if !ok {
			delay = policy.backoff(attempt, e.jitter())
		}
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &ExhaustedError{Attempts: policy.MaxAttempts, Last: lastErr}
}

// attempt performs exactly one network call and logs its outcome. The log
// record is a side effect only and never alters control flow.
func (e *Executor) attempt(ctx context.Context, method, url string, header http.Header, body []byte, attempt int) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		req.Header[key] = values
	}

	start := e.clock.Now()
	resp, err := e.client.Do(req)
	elapsed := e.clock.Since(start)

	if err != nil {
		e.logger.Warn("http request failed",
			"method", method,
			"url", url,
			"elapsed_ms", elapsed.Milliseconds(),
			"attempt", attempt,
			"error", err,
		)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	e.logger.Info("http request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
		"attempt", attempt,
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(d):
		return nil
	}
}

func retryable(status int) bool {
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout:
		return true
	case status >= 500 && status <= 599:
		return true
	}
	return false
}

// retryAfter parses a Retry-After header as non-negative seconds. HTTP-date
// forms are not recognized and fall back to computed backoff.
func retryAfter(header http.Header) (time.Duration, bool) {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
