// Package search drives the journey planner: the first-page search with its
// flexible, taxi and widening fallbacks, cursor continuation, and direct
// non-transit searches.
package search

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/tripsearch/internal/cursor"
	"github.com/dharmasatrya/tripsearch/internal/filter"
	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/normalizer"
	"github.com/dharmasatrya/tripsearch/internal/ranking"
	"github.com/dharmasatrya/tripsearch/internal/timezone"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

const (
	flexibleNumTripPatterns = 1
	minReconcileWindow      = 60
	dayWindow               = 24 * 60
)

type Config struct {
	DefaultNumTripPatterns int
	// Location decides calendar-day boundaries when widening without
	// planner guidance.
	Location *time.Location
	// MaxWideningQueries bounds the regular queries of one first-page
	// search, the initial one included.
	MaxWideningQueries int
	// MaxWideningDays bounds day-by-day widening when the planner returns
	// no metadata.
	MaxWideningDays int
}

func DefaultConfig() Config {
	return Config{
		DefaultNumTripPatterns: 8,
		Location:               timezone.Load(timezone.DefaultServiceZone),
		MaxWideningQueries:     15,
		MaxWideningDays:        7,
	}
}

// Orchestrator holds one querier per planner host for the process lifetime.
type Orchestrator struct {
	transit    upstream.Querier
	nonTransit upstream.Querier
	config     Config
}

func NewOrchestrator(transit, nonTransit upstream.Querier, config Config) *Orchestrator {
	if nonTransit == nil {
		nonTransit = transit
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Orchestrator{
		transit:    transit,
		nonTransit: nonTransit,
		config:     config,
	}
}

// Result is the outcome of a trip search. NextCursor is empty when there
// are no further pages.
type Result struct {
	TripPatterns           []models.TripPattern
	NextCursor             string
	HasFlexibleTripPattern bool
	IsTaxiSearch           bool
	RoutingErrors          []models.RoutingError
	Queries                []upstream.TripVariables
	// Params are the params of the request, with InitialSearchDate set.
	Params models.SearchParams
}

// run is the state of one orchestrator invocation.
type run struct {
	o       *Orchestrator
	headers http.Header
	norm    *normalizer.Normalizer
	logger  zerolog.Logger

	mu      sync.Mutex
	queries []upstream.TripVariables
}

func (o *Orchestrator) newRun(headers http.Header) *run {
	return &run{
		o:       o,
		headers: headers,
		norm:    normalizer.New(),
		logger:  log.With().Str("correlation_id", headers.Get(upstream.HeaderCorrelationID)).Logger(),
	}
}

func (r *run) query(ctx context.Context, q upstream.Querier, vars upstream.TripVariables) (*upstream.TripResult, error) {
	r.mu.Lock()
	r.queries = append(r.queries, vars)
	r.mu.Unlock()
	return q.Trip(ctx, vars, r.headers)
}

func (r *run) issued() []upstream.TripVariables {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]upstream.TripVariables(nil), r.queries...)
}

// regularOutcome is one regular query, filtered to valid transit trips.
type regularOutcome struct {
	params        models.SearchParams
	trips         []models.TripPattern
	metadata      *models.Metadata
	routingErrors []models.RoutingError
}

func (r *run) regular(ctx context.Context, params models.SearchParams) (regularOutcome, error) {
	vars := upstream.VariablesFromParams(params, r.o.config.DefaultNumTripPatterns)
	res, err := r.query(ctx, r.o.transit, vars)
	if err != nil {
		return regularOutcome{}, err
	}
	return regularOutcome{
		params:        params,
		trips:         filter.Apply(r.norm.TripPatterns(res.TripPatterns), filter.IsValidTransitAlternative),
		metadata:      res.Metadata,
		routingErrors: res.RoutingErrors,
	}, nil
}

// flexible looks for a single book-ahead alternative. A plain walk is not
// an answer.
func (r *run) flexible(ctx context.Context, params models.SearchParams) (*models.TripPattern, error) {
	p := params.Clone()
	m := &models.Modes{
		AccessMode: models.StreetModeFlexible,
		EgressMode: models.StreetModeFlexible,
		DirectMode: models.StreetModeFlexible,
	}
	if p.Modes != nil {
		m.TransportModes = p.Modes.TransportModes
	}
	p.Modes = m

	res, err := r.query(ctx, r.o.transit, upstream.VariablesFromParams(p, flexibleNumTripPatterns))
	if err != nil {
		return nil, err
	}
	for _, t := range r.norm.TripPatterns(res.TripPatterns) {
		if filter.IsDegenerateFlexibleResult(t) || !filter.IsValidTransitAlternative(t) {
			continue
		}
		return &t, nil
	}
	return nil, nil
}

// Trips searches for trip patterns. A params.Cursor that decodes continues a
// previous search with a single query. Anything else, including a malformed
// cursor, starts a first-page search.
func (o *Orchestrator) Trips(ctx context.Context, params models.SearchParams, headers http.Header) (*Result, error) {
	start := time.Now()
	if params.InitialSearchDate.IsZero() {
		params.InitialSearchDate = params.SearchDate
	}
	r := o.newRun(headers)

	var (
		result *Result
		err    error
	)
	if params.Cursor != "" {
		if data, ok := cursor.Decode(params.Cursor); ok {
			result, err = r.continuation(ctx, data.Params)
		} else {
			r.logger.Debug().Msg("Ignoring malformed cursor")
			params.Cursor = ""
		}
	}
	if result == nil && err == nil {
		result, err = r.firstPage(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	result.Queries = r.issued()
	r.logger.Info().
		Int("trip_patterns", len(result.TripPatterns)).
		Int("query_count", len(result.Queries)).
		Bool("has_cursor", result.NextCursor != "").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Trip search done")
	return result, nil
}

func (r *run) continuation(ctx context.Context, params models.SearchParams) (*Result, error) {
	params.UseFlex = false
	r.logger.Debug().Time("search_date", params.SearchDate).Msg("Continuing search from cursor")

	out, err := r.regular(ctx, params)
	if err != nil {
		return nil, err
	}
	if hopeless(out.routingErrors) {
		return nil, &RoutingFailedError{RoutingErrors: out.routingErrors, Queries: r.issued()}
	}

	result := &Result{
		TripPatterns:  ranking.Sort(out.trips, params.ArriveBy),
		RoutingErrors: out.routingErrors,
		Params:        params,
	}
	result.NextCursor, _ = cursor.Encode(params, out.metadata)
	return result, nil
}

func (r *run) firstPage(ctx context.Context, params models.SearchParams) (*Result, error) {
	var (
		regular  regularOutcome
		flexible *models.TripPattern
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := r.regular(gctx, params)
		regular = out
		return err
	})
	if params.UseFlex {
		g.Go(func() error {
			t, err := r.flexible(gctx, params)
			if err != nil {
				r.logger.Warn().Err(err).Msg("Flexible search failed")
				return nil
			}
			flexible = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	routingErrors := regular.routingErrors
	if hopeless(routingErrors) {
		if flexible == nil {
			return nil, &RoutingFailedError{RoutingErrors: routingErrors, Queries: r.issued()}
		}
		r.logger.Debug().Msg("Hopeless routing error, returning flexible result only")
		return &Result{
			TripPatterns:           []models.TripPattern{*flexible},
			HasFlexibleTripPattern: true,
			RoutingErrors:          routingErrors,
			Params:                 params,
		}, nil
	}

	var taxiTrips []models.TripPattern
	if sides := taxiSidesFor(routingErrors); sides.any() {
		if withinTaxiDistance(params) {
			r.logger.Debug().Msg("Entering taxi fallback")
			taxiTrips = r.taxi(ctx, params, sides)
		} else {
			r.logger.Debug().Msg("Endpoints too far apart for taxi fallback")
		}
	}

	stopsIssue := noStopsInRange(routingErrors)
	last := regular
	if len(regular.trips) == 0 && flexible != nil && !stopsIssue && regular.metadata != nil {
		if out, ok := r.reconcile(ctx, params, *regular.metadata, *flexible); ok {
			routingErrors = append(routingErrors, out.routingErrors...)
			last = out
		}
	}

	trips := merge(taxiTrips, last.trips, flexible, params.ArriveBy)
	if len(trips) == 0 && !stopsIssue {
		widened, err := r.widen(ctx, last)
		if err != nil {
			return nil, err
		}
		if widened == nil {
			r.logger.Debug().Int("query_count", len(r.issued())).Msg("Search exhausted")
			return &Result{
				TripPatterns:  []models.TripPattern{},
				RoutingErrors: routingErrors,
				Params:        params,
			}, nil
		}
		last = *widened
		trips = ranking.Sort(last.trips, params.ArriveBy)
	}

	result := &Result{
		TripPatterns:           trips,
		HasFlexibleTripPattern: flexible != nil,
		IsTaxiSearch:           len(taxiTrips) > 0,
		RoutingErrors:          routingErrors,
		Params:                 params,
	}
	result.NextCursor, _ = cursor.Encode(last.params, last.metadata)
	return result, nil
}

// reconcile searches the gap between the end of the first window and the
// flexible candidate for regular trips that would beat it. A failed query
// leaves the flexible candidate to stand alone.
func (r *run) reconcile(ctx context.Context, params models.SearchParams, metadata models.Metadata, flexible models.TripPattern) (regularOutcome, bool) {
	searchDate := metadata.NextSearchDate(params.ArriveBy)
	if searchDate.IsZero() {
		return regularOutcome{}, false
	}
	boundary := flexible.StartTime
	if params.ArriveBy {
		boundary = flexible.EndTime
	}
	window := int(math.Abs(boundary.Sub(searchDate).Minutes()))
	if window < minReconcileWindow {
		window = minReconcileWindow
	}

	p := params.Clone()
	p.SearchDate = searchDate
	p.SearchWindow = &window
	r.logger.Debug().Time("search_date", searchDate).Int("search_window", window).Msg("Reconciling flexible result")

	out, err := r.regular(ctx, p)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Reconcile search failed")
		return regularOutcome{}, false
	}
	if hopeless(out.routingErrors) {
		return regularOutcome{}, false
	}
	return out, true
}

// widen moves the search window forward (backward when arriving by) until a
// query yields trips. It returns nil when the budget runs out or the planner
// reports a hopeless error.
func (r *run) widen(ctx context.Context, last regularOutcome) (*regularOutcome, error) {
	cfg := r.o.config
	params := last.params.Clone()
	metadata := last.metadata

	for queries := 1; queries < cfg.MaxWideningQueries; queries++ {
		next, window, ok := r.nextWindow(params, metadata)
		if !ok {
			return nil, nil
		}
		params.SearchDate = next
		params.SearchWindow = &window
		r.logger.Debug().
			Time("search_date", next).
			Int("search_window", window).
			Int("attempt", queries+1).
			Msg("Widening search")

		out, err := r.regular(ctx, params.Clone())
		if err != nil {
			return nil, err
		}
		if hopeless(out.routingErrors) {
			return nil, nil
		}
		if len(out.trips) > 0 {
			return &out, nil
		}
		metadata = out.metadata
	}
	return nil, nil
}

// nextWindow follows the planner's suggestion when there is one, and steps
// whole days otherwise.
func (r *run) nextWindow(params models.SearchParams, metadata *models.Metadata) (time.Time, int, bool) {
	if metadata != nil {
		if next := metadata.NextSearchDate(params.ArriveBy); !next.IsZero() {
			return next, metadata.SearchWindowUsed, true
		}
	}

	loc := r.o.config.Location
	next := timezone.NextDayStart(params.SearchDate, loc)
	if params.ArriveBy {
		next = timezone.PreviousDayEnd(params.SearchDate, loc)
	}
	if timezone.CalendarDaysBetween(params.InitialSearchDate, next, loc) >= r.o.config.MaxWideningDays {
		return time.Time{}, 0, false
	}
	return next, dayWindow, true
}

// merge puts taxi trips first, followed by the regular trips and the
// flexible candidate in ranking order.
func merge(taxi, regular []models.TripPattern, flexible *models.TripPattern, arriveBy bool) []models.TripPattern {
	rest := append([]models.TripPattern(nil), regular...)
	if flexible != nil {
		rest = append(rest, *flexible)
	}
	result := append([]models.TripPattern{}, taxi...)
	return append(result, ranking.Sort(rest, arriveBy)...)
}
