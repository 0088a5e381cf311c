package search

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// RoutingFailedError is returned when the planner reports a hopeless routing
// error and there is no flexible result to fall back on. Queries holds every
// query issued for the search.
type RoutingFailedError struct {
	RoutingErrors []models.RoutingError
	Queries       []upstream.TripVariables
}

func (e *RoutingFailedError) Error() string {
	codes := make([]string, 0, len(e.RoutingErrors))
	for _, re := range e.RoutingErrors {
		codes = append(codes, string(re.Code))
	}
	return fmt.Sprintf("routing failed after %d queries: %s", len(e.Queries), strings.Join(codes, ", "))
}

func hopeless(errs []models.RoutingError) bool {
	for _, e := range errs {
		if e.IsHopeless() {
			return true
		}
	}
	return false
}

func noStopsInRange(errs []models.RoutingError) bool {
	for _, e := range errs {
		if e.Code == models.RoutingErrorNoStopsInRange {
			return true
		}
	}
	return false
}
