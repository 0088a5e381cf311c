// Package filter classifies normalized trip patterns.
package filter

import (
	"time"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

const (
	// TaxiMinCarLegDuration is the car time a taxi combination must exceed.
	TaxiMinCarLegDuration = 5 * time.Minute
	// TaxiMaxTimeFromSearch bounds how far from the initial search instant a
	// taxi combination may start (or end, when arriving by).
	TaxiMaxTimeFromSearch = 4 * time.Hour
)

type distanceBounds struct {
	lower float64
	upper float64
}

var nonTransitDistance = map[models.StreetMode]distanceBounds{
	models.StreetModeCar:        {lower: 1, upper: 120000},
	models.StreetModeFoot:       {lower: 1, upper: 100000},
	models.StreetModeBicycle:    {lower: 1, upper: 100000},
	models.StreetModeBikeRental: {lower: 1, upper: 100000},
}

// Predicate classifies a trip pattern.
type Predicate func(models.TripPattern) bool

// Apply keeps the trips that satisfy pred, preserving order.
func Apply(trips []models.TripPattern, pred Predicate) []models.TripPattern {
	result := make([]models.TripPattern, 0, len(trips))
	for _, t := range trips {
		if pred(t) {
			result = append(result, t)
		}
	}
	return result
}

func IsTransitAlternative(trip models.TripPattern) bool {
	for _, leg := range trip.Legs {
		if leg.IsTransit() {
			return true
		}
	}
	return false
}

func IsFlexibleAlternative(trip models.TripPattern) bool {
	for _, leg := range trip.Legs {
		if leg.Flexible {
			return true
		}
	}
	return false
}

// IsFlexibleCombinationValid rejects trips where a flexible leg shares the
// transit part of the trip with other transit legs.
func IsFlexibleCombinationValid(trip models.TripPattern) bool {
	transitLegs := 0
	flexibleLegs := 0
	for _, leg := range trip.Legs {
		if leg.IsTransit() {
			transitLegs++
		}
		if leg.Flexible {
			flexibleLegs++
		}
	}
	if flexibleLegs == 0 {
		return true
	}
	return flexibleLegs == 1 && transitLegs == 1
}

func IsValidTransitAlternative(trip models.TripPattern) bool {
	return IsTransitAlternative(trip) && IsFlexibleCombinationValid(trip)
}

// IsValidNonTransitDistance checks the trip length against the bounds of
// the direct mode. Modes without bounds are rejected.
func IsValidNonTransitDistance(trip models.TripPattern, mode models.StreetMode) bool {
	bounds, ok := nonTransitDistance[mode]
	if !ok {
		return false
	}
	return trip.Distance >= bounds.lower && trip.Distance <= bounds.upper
}

func IsBikeRentalAlternative(trip models.TripPattern) bool {
	if len(trip.Legs) == 0 {
		return false
	}
	first := trip.Legs[0].FromPlace
	last := trip.Legs[len(trip.Legs)-1].ToPlace
	return first.BikeRentalStation != nil && last.BikeRentalStation != nil
}

// IsDegenerateFlexibleResult reports a flexible search answer that is just a
// walk.
func IsDegenerateFlexibleResult(trip models.TripPattern) bool {
	return len(trip.Legs) == 1 && trip.Legs[0].Mode == models.ModeFoot
}

// HasCarLeg reports whether any leg is driven.
func HasCarLeg(trip models.TripPattern) bool {
	for _, leg := range trip.Legs {
		if leg.Mode == models.ModeCar {
			return true
		}
	}
	return false
}

// IsValidTaxiAlternative builds the taxi-combination predicate. carPattern is
// the plain car answer for the same search and may be nil.
func IsValidTaxiAlternative(initialSearchDate time.Time, carPattern *models.TripPattern, arriveBy bool) Predicate {
	return func(trip models.TripPattern) bool {
		var carDuration time.Duration
		carLegs, otherLegs := 0, 0
		for _, leg := range trip.Legs {
			if leg.Mode == models.ModeCar {
				carLegs++
				carDuration += leg.DurationTime()
			} else {
				otherLegs++
			}
		}
		if carLegs == 0 || otherLegs == 0 {
			return false
		}
		if !IsFlexibleCombinationValid(trip) {
			return false
		}
		if carDuration <= TaxiMinCarLegDuration {
			return false
		}
		if carPattern != nil && carDuration >= carPattern.DurationTime() {
			return false
		}

		boundary := trip.StartTime
		if arriveBy {
			boundary = trip.EndTime
		}
		diff := boundary.Sub(initialSearchDate)
		if diff < 0 {
			diff = -diff
		}
		return diff <= TaxiMaxTimeFromSearch
	}
}
