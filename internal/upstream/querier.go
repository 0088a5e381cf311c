// Package upstream talks to the journey-planner GraphQL service.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

// Querier issues one trip query against a journey planner.
type Querier interface {
	Name() string
	Trip(ctx context.Context, vars TripVariables, headers http.Header) (*TripResult, error)
}

// TripResult is the raw answer of one trip query. Metadata is nil when the
// upstream did not report a search window.
type TripResult struct {
	TripPatterns  []RawTripPattern
	Metadata      *models.Metadata
	RoutingErrors []models.RoutingError
}

// QueryError wraps any failure to obtain a TripResult, keeping the
// attempted variables for diagnostics.
type QueryError struct {
	Upstream  string
	Variables TripVariables
	Err       error
}

func (e *QueryError) Error() string {
	return e.Upstream + ": trip query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func NewQueryError(upstream string, vars TripVariables, err error) *QueryError {
	return &QueryError{
		Upstream:  upstream,
		Variables: vars,
		Err:       err,
	}
}

// GraphQLError carries the GraphQL "errors" array of a response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
