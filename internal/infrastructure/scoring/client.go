package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/finguard/fraud-screening-backend/internal/domain/errors"
	"github.com/finguard/fraud-screening-backend/internal/domain/screening"
)

// Client calls the external scoring services. It holds no per-call state
// and is safe for concurrent reuse across independent workflow runs.
type Client struct {
	baseURL  string
	http     *http.Client
	registry *Registry
	policy   RetryPolicy
	limiter  *rate.Limiter
	sleeper  Sleeper
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSleeper overrides the backoff sleeper, used by tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit bounds the outbound request rate across all stages.
func WithRateLimit(rps, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient creates a scoring client against the given inference API base
// URL with the supplied retry policy.
func NewClient(baseURL string, registry *Registry, policy RetryPolicy, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		http:     &http.Client{},
		registry: registry,
		policy:   policy,
		sleeper:  ClockSleeper{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke calls the scoring service bound to the stage with the given
// payload, retrying transport failures per the client's policy. The last
// attempt's failure is the one surfaced.
func (c *Client) Invoke(ctx context.Context, stage screening.Stage, payload interface{}) (*screening.ScoringResult, error) {
	service, err := c.registry.Service(stage)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewStageError(string(stage), "encoding scoring payload").WithCause(err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.policy.Backoff(attempt - 1)
			if err := c.sleeper.Sleep(ctx, delay); err != nil {
				return nil, errors.NewTransportError(service, "backoff interrupted").WithCause(err)
			}
		}

		result, err := c.attempt(ctx, service, body)
		if err == nil {
			return result, nil
		}
		if !errors.IsRetryable(err) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("scoring call failed",
			"service", service,
			"stage", string(stage),
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"error", err)
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, service string, body []byte) (*screening.ScoringResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.NewTransportError(service, "rate limiter wait").WithCause(err)
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.AttemptTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/predict/%s", c.baseURL, service)
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewTransportError(service, "building request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewTransportError(service, "request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.NewTransportError(service, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var result screening.ScoringResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewStageError(service, "decoding scoring response").WithCause(err)
	}
	if err := result.Validate(); err != nil {
		return nil, errors.NewStageError(service, "invalid scoring response").WithCause(err)
	}

	return &result, nil
}

// Timeout returns the per-attempt timeout, exposed for callers that size
// their own deadlines around scoring calls.
func (c *Client) Timeout() time.Duration {
	return c.policy.AttemptTimeout
}
