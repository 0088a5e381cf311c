package search

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripsearch/internal/cursor"
	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

var base = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type call struct {
	vars    upstream.TripVariables
	headers http.Header
}

// scripted answers trip queries with handle and records every call.
type scripted struct {
	name   string
	handle func(n int, vars upstream.TripVariables) (*upstream.TripResult, error)

	mu    sync.Mutex
	calls []call
}

func (s *scripted) Name() string {
	return s.name
}

func (s *scripted) Trip(ctx context.Context, vars upstream.TripVariables, headers http.Header) (*upstream.TripResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{vars: vars, headers: headers})
	n := len(s.calls)
	s.mu.Unlock()
	return s.handle(n, vars)
}

func (s *scripted) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, len(s.calls))
	for i, c := range s.calls {
		result[i] = kind(c.vars)
	}
	return result
}

func (s *scripted) callsOf(k string) []upstream.TripVariables {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []upstream.TripVariables
	for _, c := range s.calls {
		if kind(c.vars) == k {
			result = append(result, c.vars)
		}
	}
	return result
}

func kind(v upstream.TripVariables) string {
	switch {
	case v.Modes == nil:
		return "regular"
	case v.Modes.AccessMode == models.StreetModeFlexible:
		return "flexible"
	case v.Modes.AccessMode == models.StreetModeCarPickup || v.Modes.EgressMode == models.StreetModeCarDropoff:
		return "taxi"
	case v.Modes.DirectMode != "" && v.Modes.DirectMode != models.StreetModeFoot:
		return "direct"
	}
	return "regular"
}

func ts(t time.Time) upstream.Timestamp {
	return upstream.Timestamp{Time: t}
}

type legShape struct {
	mode     string
	duration time.Duration
	flexible bool
}

func rawTrip(start time.Time, legs ...legShape) upstream.RawTripPattern {
	trip := upstream.RawTripPattern{StartTime: ts(start)}
	at := start
	for _, l := range legs {
		leg := upstream.RawLeg{
			Mode:           l.mode,
			Duration:       int(l.duration.Seconds()),
			Distance:       1000,
			AimedStartTime: ts(at),
			AimedEndTime:   ts(at.Add(l.duration)),
		}
		if l.flexible {
			leg.Line = &upstream.RawLine{ID: "ATB:Line:1", FlexibleLineType: "flexibleAreasOnly"}
		}
		trip.Legs = append(trip.Legs, leg)
		trip.Distance += leg.Distance
		at = at.Add(l.duration)
	}
	trip.EndTime = ts(at)
	trip.Duration = int(at.Sub(start).Seconds())
	return trip
}

func railTrip(start time.Time) upstream.RawTripPattern {
	return rawTrip(start,
		legShape{mode: "foot", duration: 5 * time.Minute},
		legShape{mode: "rail", duration: 40 * time.Minute},
		legShape{mode: "foot", duration: 5 * time.Minute},
	)
}

func flexibleTrip(start time.Time) upstream.RawTripPattern {
	return rawTrip(start, legShape{mode: "bus", duration: 30 * time.Minute, flexible: true})
}

func result(trips ...upstream.RawTripPattern) *upstream.TripResult {
	return &upstream.TripResult{TripPatterns: trips}
}

func metadataAfter(v upstream.TripVariables, window time.Duration) *models.Metadata {
	return &models.Metadata{
		SearchWindowUsed: int(window.Minutes()),
		NextDateTime:     v.DateTime.Add(window),
		PrevDateTime:     v.DateTime.Add(-window),
	}
}

func testConfig() Config {
	return Config{
		DefaultNumTripPatterns: 5,
		Location:               time.UTC,
		MaxWideningQueries:     15,
		MaxWideningDays:        7,
	}
}

var (
	oslo    = &models.Coordinates{Latitude: 59.9139, Longitude: 10.7522}
	majorst = &models.Coordinates{Latitude: 59.9295, Longitude: 10.7155}
	bergen  = &models.Coordinates{Latitude: 60.3913, Longitude: 5.3221}
)

func firstPageParams() models.SearchParams {
	return models.SearchParams{
		From:       models.Location{Name: "Oslo S", Coordinates: oslo},
		To:         models.Location{Name: "Majorstuen", Coordinates: majorst},
		SearchDate: base,
		UseFlex:    true,
	}
}

func TestTrips_DiscardsDegenerateFlexibleResult(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(rawTrip(base, legShape{mode: "foot", duration: 20 * time.Minute})), nil
		}
		return result(railTrip(base.Add(10 * time.Minute))), nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 1)
	assert.Equal(t, models.ModeRail, res.TripPatterns[0].Legs[1].Mode)
	assert.False(t, res.HasFlexibleTripPattern)
	assert.False(t, res.IsTaxiSearch)
	assert.ElementsMatch(t, []string{"regular", "flexible"}, q.kinds())
	assert.Len(t, res.Queries, 2)
}

func TestTrips_MergesFlexibleCandidateInRankingOrder(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(flexibleTrip(base.Add(20 * time.Minute))), nil
		}
		return result(railTrip(base.Add(50*time.Minute)), railTrip(base.Add(5*time.Minute))), nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 3)
	assert.True(t, res.HasFlexibleTripPattern)
	assert.True(t, res.TripPatterns[0].StartTime.Equal(base.Add(5*time.Minute)))
	assert.True(t, res.TripPatterns[1].Legs[0].Flexible)
	assert.True(t, res.TripPatterns[2].StartTime.Equal(base.Add(50*time.Minute)))
}

func TestTrips_TaxiResultsComeFirst(t *testing.T) {
	taxiTrip := rawTrip(base.Add(20*time.Minute),
		legShape{mode: "car", duration: 10 * time.Minute},
		legShape{mode: "rail", duration: 30 * time.Minute},
	)
	transit := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		switch kind(v) {
		case "taxi":
			return result(taxiTrip), nil
		case "flexible":
			return result(), nil
		}
		return &upstream.TripResult{
			TripPatterns:  []upstream.RawTripPattern{railTrip(base.Add(10 * time.Minute))},
			Metadata:      metadataAfter(v, 2*time.Hour),
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldTo}},
		}, nil
	}}
	nonTransit := &scripted{name: "non-transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return result(rawTrip(base, legShape{mode: "car", duration: time.Hour})), nil
	}}
	o := NewOrchestrator(transit, nonTransit, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 2)
	assert.True(t, res.IsTaxiSearch)
	assert.Equal(t, models.ModeCar, res.TripPatterns[0].Legs[0].Mode)
	assert.Equal(t, models.ModeFoot, res.TripPatterns[1].Legs[0].Mode)
	assert.NotEmpty(t, res.NextCursor)

	taxiCalls := transit.callsOf("taxi")
	require.Len(t, taxiCalls, 1)
	assert.Equal(t, models.StreetModeFoot, taxiCalls[0].Modes.AccessMode)
	assert.Equal(t, models.StreetModeCarDropoff, taxiCalls[0].Modes.EgressMode)
	assert.Equal(t, 2, taxiCalls[0].NumTripPatterns)

	carCalls := nonTransit.callsOf("direct")
	require.Len(t, carCalls, 1)
	assert.Equal(t, models.StreetModeCar, carCalls[0].Modes.DirectMode)
}

func TestTrips_TaxiSlowerThanCarIsDropped(t *testing.T) {
	transit := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "taxi" {
			return result(rawTrip(base,
				legShape{mode: "car", duration: 40 * time.Minute},
				legShape{mode: "rail", duration: 30 * time.Minute},
			)), nil
		}
		return &upstream.TripResult{
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldFrom}},
		}, nil
	}}
	nonTransit := &scripted{name: "non-transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return result(rawTrip(base, legShape{mode: "car", duration: 30 * time.Minute})), nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(transit, nonTransit, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	assert.Empty(t, res.TripPatterns)
	assert.False(t, res.IsTaxiSearch)
	require.Len(t, transit.callsOf("taxi"), 1)
	assert.Equal(t, models.StreetModeCarPickup, transit.callsOf("taxi")[0].Modes.AccessMode)
	// no stops in range never widens
	assert.Len(t, transit.callsOf("regular"), 1)
}

func TestTrips_NoStopsInRangeWithoutFieldTaxisBothEnds(t *testing.T) {
	transit := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "taxi" {
			return result(), nil
		}
		return &upstream.TripResult{
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange}},
		}, nil
	}}
	nonTransit := &scripted{name: "non-transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return result(rawTrip(base, legShape{mode: "car", duration: 30 * time.Minute})), nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(transit, nonTransit, testConfig())

	_, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	taxiCalls := transit.callsOf("taxi")
	require.Len(t, taxiCalls, 1)
	assert.Equal(t, models.StreetModeCarPickup, taxiCalls[0].Modes.AccessMode)
	assert.Equal(t, models.StreetModeCarDropoff, taxiCalls[0].Modes.EgressMode)
}

func TestTrips_NoCursorWithoutNextInstant(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{
			TripPatterns: []upstream.RawTripPattern{railTrip(base.Add(10 * time.Minute))},
			Metadata:     &models.Metadata{SearchWindowUsed: 120},
		}, nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 1)
	assert.Empty(t, res.NextCursor)
}

func TestTrips_TaxiSkippedWhenEndpointsFarApart(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldTo}},
		}, nil
	}}
	params := firstPageParams()
	params.To = models.Location{Name: "Bergen", Coordinates: bergen}
	params.UseFlex = false
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	assert.Empty(t, res.TripPatterns)
	assert.Empty(t, res.NextCursor)
	assert.Equal(t, []string{"regular"}, q.kinds())
	require.Len(t, res.RoutingErrors, 1)
}

func TestTrips_ContinuationIssuesSingleRegularQuery(t *testing.T) {
	params := firstPageParams()
	params.InitialSearchDate = base
	token, ok := cursor.Encode(params, &models.Metadata{
		SearchWindowUsed: 90,
		NextDateTime:     base.Add(90 * time.Minute),
		PrevDateTime:     base.Add(-90 * time.Minute),
	})
	require.True(t, ok)

	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldTo}},
		}, nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), models.SearchParams{Cursor: token}, http.Header{})
	require.NoError(t, err)

	assert.Empty(t, res.TripPatterns)
	assert.Empty(t, res.NextCursor)
	assert.False(t, res.HasFlexibleTripPattern)
	require.Len(t, q.calls, 1)
	v := q.calls[0].vars
	assert.Equal(t, "regular", kind(v))
	assert.True(t, v.DateTime.Equal(base.Add(90*time.Minute)))
	require.NotNil(t, v.SearchWindow)
	assert.Equal(t, 90, *v.SearchWindow)
	assert.True(t, res.Params.InitialSearchDate.Equal(base))
	assert.False(t, res.Params.UseFlex)
}

func TestTrips_ContinuationCarriesCursorForward(t *testing.T) {
	params := firstPageParams()
	token, ok := cursor.Encode(params, &models.Metadata{SearchWindowUsed: 60, NextDateTime: base.Add(time.Hour)})
	require.True(t, ok)

	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{
			TripPatterns: []upstream.RawTripPattern{railTrip(v.DateTime.Add(10 * time.Minute))},
			Metadata:     metadataAfter(v, time.Hour),
		}, nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), models.SearchParams{Cursor: token}, http.Header{})
	require.NoError(t, err)
	require.Len(t, res.TripPatterns, 1)

	next, ok := cursor.Decode(res.NextCursor)
	require.True(t, ok)
	assert.True(t, next.Params.SearchDate.Equal(base.Add(2*time.Hour)))
}

func TestTrips_MalformedCursorStartsFirstPage(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{
			TripPatterns: []upstream.RawTripPattern{railTrip(base.Add(10 * time.Minute))},
			Metadata:     metadataAfter(v, 2*time.Hour),
		}, nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	params.Cursor = "not a cursor"
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 1)
	assert.Empty(t, res.Params.Cursor)
	next, ok := cursor.Decode(res.NextCursor)
	require.True(t, ok)
	assert.True(t, next.Params.SearchDate.Equal(base.Add(2*time.Hour)))
	assert.True(t, next.Params.InitialSearchDate.Equal(base))
	assert.False(t, next.Params.UseFlex)
}

func TestTrips_HopelessErrorWithoutFlexibleFails(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(), nil
		}
		return &upstream.TripResult{
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorOutsideBounds, InputField: models.InputFieldFrom}},
		}, nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.Error(t, err)
	assert.Nil(t, res)

	var routingErr *RoutingFailedError
	require.True(t, errors.As(err, &routingErr))
	assert.Equal(t, models.RoutingErrorOutsideBounds, routingErr.RoutingErrors[0].Code)
	assert.Len(t, routingErr.Queries, 2)
	assert.Contains(t, err.Error(), "outsideBounds")
}

func TestTrips_HopelessErrorReturnsFlexibleOnly(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(flexibleTrip(base.Add(3 * time.Hour))), nil
		}
		return &upstream.TripResult{
			TripPatterns:  []upstream.RawTripPattern{railTrip(base)},
			RoutingErrors: []models.RoutingError{{Code: models.RoutingErrorWalkingBetterThanTransit}},
		}, nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 1)
	assert.True(t, res.TripPatterns[0].Legs[0].Flexible)
	assert.True(t, res.HasFlexibleTripPattern)
	assert.Empty(t, res.NextCursor)
	assert.Len(t, q.calls, 2)
}

func TestTrips_ReconcilesGapBeforeFlexibleResult(t *testing.T) {
	tests := []struct {
		name         string
		flexStart    time.Time
		expectWindow int
	}{
		{name: "gap of three hours", flexStart: base.Add(5 * time.Hour), expectWindow: 180},
		{name: "short gap uses minimum window", flexStart: base.Add(150 * time.Minute), expectWindow: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
				if kind(v) == "flexible" {
					return result(flexibleTrip(tt.flexStart)), nil
				}
				if v.DateTime.Equal(base) {
					return &upstream.TripResult{Metadata: metadataAfter(v, 2*time.Hour)}, nil
				}
				return &upstream.TripResult{
					TripPatterns: []upstream.RawTripPattern{railTrip(base.Add(130 * time.Minute))},
					Metadata:     metadataAfter(v, time.Hour),
				}, nil
			}}
			o := NewOrchestrator(q, q, testConfig())

			res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
			require.NoError(t, err)

			regular := q.callsOf("regular")
			require.Len(t, regular, 2)
			assert.True(t, regular[1].DateTime.Equal(base.Add(2*time.Hour)))
			require.NotNil(t, regular[1].SearchWindow)
			assert.Equal(t, tt.expectWindow, *regular[1].SearchWindow)

			require.Len(t, res.TripPatterns, 2)
			assert.True(t, res.HasFlexibleTripPattern)
			assert.False(t, res.TripPatterns[0].Legs[0].Flexible)
			assert.True(t, res.TripPatterns[1].Legs[0].Flexible)

			next, ok := cursor.Decode(res.NextCursor)
			require.True(t, ok)
			assert.True(t, next.Params.SearchDate.Equal(base.Add(3*time.Hour)))
		})
	}
}

func TestTrips_WideningWithMetadataStopsAfterFifteenQueries(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return &upstream.TripResult{Metadata: metadataAfter(v, 2*time.Hour)}, nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	assert.Empty(t, res.TripPatterns)
	assert.NotNil(t, res.TripPatterns)
	assert.Empty(t, res.NextCursor)
	require.Len(t, q.calls, 15)
	for i, c := range q.calls {
		assert.True(t, c.vars.DateTime.Equal(base.Add(time.Duration(i)*2*time.Hour)), "call %d", i)
	}
	assert.Equal(t, 120, *q.calls[14].vars.SearchWindow)
}

func TestTrips_WideningWithoutMetadataStopsAfterSevenDays(t *testing.T) {
	tests := []struct {
		name     string
		arriveBy bool
		lastDate time.Time
	}{
		{name: "depart after", arriveBy: false, lastDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)},
		{name: "arrive by", arriveBy: true, lastDate: time.Date(2026, 3, 4, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
				return result(), nil
			}}
			params := firstPageParams()
			params.UseFlex = false
			params.ArriveBy = tt.arriveBy
			o := NewOrchestrator(q, q, testConfig())

			res, err := o.Trips(context.Background(), params, http.Header{})
			require.NoError(t, err)

			assert.Empty(t, res.TripPatterns)
			assert.Empty(t, res.NextCursor)
			require.Len(t, q.calls, 7)
			last := q.calls[6].vars
			assert.True(t, last.DateTime.Equal(tt.lastDate), "got %s", last.DateTime)
			require.NotNil(t, last.SearchWindow)
			assert.Equal(t, 1440, *last.SearchWindow)
		})
	}
}

func TestTrips_WideningStopsAtFirstResult(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		res := &upstream.TripResult{Metadata: metadataAfter(v, 2*time.Hour)}
		if n == 3 {
			res.TripPatterns = []upstream.RawTripPattern{railTrip(v.DateTime.Add(30 * time.Minute))}
		}
		return res, nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	require.Len(t, res.TripPatterns, 1)
	assert.Len(t, q.calls, 3)
	assert.Len(t, res.Queries, 3)

	next, ok := cursor.Decode(res.NextCursor)
	require.True(t, ok)
	assert.True(t, next.Params.SearchDate.Equal(base.Add(6*time.Hour)))
	assert.True(t, next.Params.InitialSearchDate.Equal(base))
}

func TestTrips_WideningStopsOnHopelessError(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		res := &upstream.TripResult{Metadata: metadataAfter(v, 2*time.Hour)}
		if n == 2 {
			res.RoutingErrors = []models.RoutingError{{Code: models.RoutingErrorOutsideServicePeriod, InputField: models.InputFieldDateTime}}
		}
		return res, nil
	}}
	params := firstPageParams()
	params.UseFlex = false
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), params, http.Header{})
	require.NoError(t, err)

	assert.Empty(t, res.TripPatterns)
	assert.Empty(t, res.NextCursor)
	assert.Len(t, q.calls, 2)
}

func TestTrips_FlexibleFailureIsIgnored(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return nil, upstream.NewQueryError("transit", v, errors.New("connection reset"))
		}
		return result(railTrip(base)), nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)
	assert.Len(t, res.TripPatterns, 1)
	assert.False(t, res.HasFlexibleTripPattern)
}

func TestTrips_RegularFailurePropagates(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(flexibleTrip(base)), nil
		}
		return nil, upstream.NewQueryError("transit", v, errors.New("connection reset"))
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.Error(t, err)
	assert.Nil(t, res)

	var queryErr *upstream.QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, "transit", queryErr.Upstream)
}

func TestTrips_ForwardsHeadersAndFixesInitialSearchDate(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		return result(railTrip(base)), nil
	}}
	headers := http.Header{}
	headers.Set(upstream.HeaderCorrelationID, "abc-123")
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), headers)
	require.NoError(t, err)

	assert.True(t, res.Params.InitialSearchDate.Equal(base))
	for _, c := range q.calls {
		assert.Equal(t, "abc-123", c.headers.Get(upstream.HeaderCorrelationID))
	}
	assert.Equal(t, 5, q.callsOf("regular")[0].NumTripPatterns)
	assert.Equal(t, 1, q.callsOf("flexible")[0].NumTripPatterns)
}

func TestTrips_AllPatternsShareDerivedID(t *testing.T) {
	q := &scripted{name: "transit", handle: func(n int, v upstream.TripVariables) (*upstream.TripResult, error) {
		if kind(v) == "flexible" {
			return result(flexibleTrip(base.Add(time.Hour))), nil
		}
		return result(railTrip(base), railTrip(base.Add(20*time.Minute))), nil
	}}
	o := NewOrchestrator(q, q, testConfig())

	res, err := o.Trips(context.Background(), firstPageParams(), http.Header{})
	require.NoError(t, err)
	require.Len(t, res.TripPatterns, 3)

	prefix := res.TripPatterns[0].ID[:23]
	for _, trip := range res.TripPatterns {
		assert.Equal(t, prefix, trip.ID[:23])
	}
}
