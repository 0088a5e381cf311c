package search

import (
	"context"
	"math"

	"github.com/sourcegraph/conc"

	"github.com/dharmasatrya/tripsearch/internal/filter"
	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

const (
	// TaxiMaxBeelineDistance is the longest straight-line distance between
	// the endpoints for which a taxi combination is searched, in meters.
	TaxiMaxBeelineDistance = 50000
	taxiNumTripPatterns    = 2
	earthRadiusMeters      = 6371000
)

// taxiSides tells which ends of the trip lack a transit connection.
type taxiSides struct {
	front bool
	back  bool
}

func (s taxiSides) any() bool {
	return s.front || s.back
}

func taxiSidesFor(errs []models.RoutingError) taxiSides {
	var s taxiSides
	for _, e := range errs {
		if e.Code != models.RoutingErrorNoStopsInRange && e.Code != models.RoutingErrorNoTransitConnection {
			continue
		}
		switch e.InputField {
		case models.InputFieldFrom:
			s.front = true
		case models.InputFieldTo:
			s.back = true
		default:
			s.front, s.back = true, true
		}
	}
	return s
}

// withinTaxiDistance is true when either endpoint has no coordinates.
func withinTaxiDistance(params models.SearchParams) bool {
	from, to := params.From.Coordinates, params.To.Coordinates
	if from == nil || to == nil {
		return true
	}
	return beeline(*from, *to) <= TaxiMaxBeelineDistance
}

// beeline is the haversine distance in meters.
func beeline(a, b models.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

func taxiModes(base *models.Modes, sides taxiSides) *models.Modes {
	m := &models.Modes{
		AccessMode: models.StreetModeFoot,
		EgressMode: models.StreetModeFoot,
	}
	if base != nil {
		m.TransportModes = base.TransportModes
	}
	if sides.front {
		m.AccessMode = models.StreetModeCarPickup
	}
	if sides.back {
		m.EgressMode = models.StreetModeCarDropoff
	}
	return m
}

// directModes restricts a search to a single street mode with no transit.
func directModes(mode models.StreetMode) *models.Modes {
	return &models.Modes{
		AccessMode:     models.StreetModeFoot,
		EgressMode:     models.StreetModeFoot,
		DirectMode:     mode,
		TransportModes: []models.TransportMode{},
	}
}

// taxi runs the combined front/back taxi query next to a plain car query.
// Failures are logged and yield no taxi results.
func (r *run) taxi(ctx context.Context, params models.SearchParams, sides taxiSides) []models.TripPattern {
	taxiParams := params.Clone()
	taxiParams.Modes = taxiModes(taxiParams.Modes, sides)
	taxiVars := upstream.VariablesFromParams(taxiParams, taxiNumTripPatterns)

	carParams := params.Clone()
	carParams.Modes = directModes(models.StreetModeCar)
	carVars := upstream.VariablesFromParams(carParams, 1)

	var (
		taxiRes, carRes *upstream.TripResult
		taxiErr, carErr error
		wg              conc.WaitGroup
	)
	wg.Go(func() {
		taxiRes, taxiErr = r.query(ctx, r.o.transit, taxiVars)
	})
	wg.Go(func() {
		carRes, carErr = r.query(ctx, r.o.nonTransit, carVars)
	})
	wg.Wait()

	if taxiErr != nil {
		r.logger.Warn().Err(taxiErr).Msg("Taxi search failed")
		return nil
	}

	var carPattern *models.TripPattern
	if carErr != nil {
		r.logger.Warn().Err(carErr).Msg("Car comparison search failed")
	} else {
		for _, t := range r.norm.TripPatterns(carRes.TripPatterns) {
			if filter.HasCarLeg(t) {
				carPattern = &t
				break
			}
		}
	}

	trips := r.norm.TripPatterns(taxiRes.TripPatterns)
	valid := filter.Apply(trips, filter.IsValidTaxiAlternative(params.InitialSearchDate, carPattern, params.ArriveBy))
	r.logger.Debug().
		Int("candidates", len(trips)).
		Int("valid", len(valid)).
		Bool("front", sides.front).
		Bool("back", sides.back).
		Msg("Taxi search done")
	return valid
}
