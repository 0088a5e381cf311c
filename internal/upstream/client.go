package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripsearch/internal/ratelimit"
)

// Client is a journey-planner GraphQL client bound to one upstream host.
type Client struct {
	name       string
	url        string
	clientName string
	httpClient *http.Client
	limiter    *ratelimit.UpstreamLimiter
	maxRetries int
	newBackOff func() backoff.BackOff
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientName sets the ET-Client-Name header sent on every request.
func WithClientName(name string) Option {
	return func(c *Client) {
		c.clientName = name
	}
}

func WithRateLimiter(limiter *ratelimit.UpstreamLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithMaxRetries sets how often transient HTTP failures are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

// New creates a client for the GraphQL endpoint at url.
func New(name, url string, opts ...Option) *Client {
	c := &Client{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 2,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string {
	return c.name
}

type graphqlRequest struct {
	Query         string        `json:"query"`
	OperationName string        `json:"operationName"`
	Variables     TripVariables `json:"variables"`
}

// Trip runs the trip query. Every failure is returned as a *QueryError.
func (c *Client) Trip(ctx context.Context, vars TripVariables, headers http.Header) (*TripResult, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:         TripQuery,
		OperationName: "Trip",
		Variables:     vars,
	})
	if err != nil {
		return nil, NewQueryError(c.name, vars, fmt.Errorf("encoding variables: %w", err))
	}

	var result *TripResult
	attempt := 0
	operation := func() error {
		attempt++
		r, err := c.do(ctx, body, headers)
		if err != nil {
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) && !statusErr.retryable() {
				return backoff.Permanent(err)
			}
			var gqlErr *GraphQLError
			if errors.As(err, &gqlErr) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Str("upstream", c.name).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Str("correlation_id", headers.Get(HeaderCorrelationID)).
			Msg("Retrying trip query")
	}

	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, NewQueryError(c.name, vars, err)
	}
	return result, nil
}

// HeaderCorrelationID is forwarded from the incoming request.
const HeaderCorrelationID = "X-Correlation-Id"

func (c *Client) do(ctx context.Context, body []byte, headers http.Header) (*TripResult, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.name); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientName != "" {
		req.Header.Set("ET-Client-Name", c.clientName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var decoded tripResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range decoded.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return nil, gqlErr
	}

	result := decoded.toResult()
	log.Debug().
		Str("upstream", c.name).
		Int("status", resp.StatusCode).
		Int("trip_patterns", len(result.TripPatterns)).
		Int("routing_errors", len(result.RoutingErrors)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Str("correlation_id", headers.Get(HeaderCorrelationID)).
		Msg("Trip query completed")

	return result, nil
}
