package ranking

import (
	"sort"
	"time"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

// Sort orders trips by expected start ascending, or by expected end
// descending when the search arrives by a given time. The input is not
// modified.
func Sort(trips []models.TripPattern, arriveBy bool) []models.TripPattern {
	result := make([]models.TripPattern, len(trips))
	copy(result, trips)

	sort.SliceStable(result, func(i, j int) bool {
		if arriveBy {
			return result[i].ExpectedEndTime.After(result[j].ExpectedEndTime)
		}
		return result[i].ExpectedStartTime.Before(result[j].ExpectedStartTime)
	})

	return result
}

// Realtime refresh bands, measured from now to the trip's expected start.
const (
	CloseToDepartureBand = 30 * time.Minute
	NearDepartureBand    = 60 * time.Minute
	SoonDepartureBand    = 120 * time.Minute

	CloseToDepartureRefresh = 30 * time.Second
	NearDepartureRefresh    = 60 * time.Second
	SoonDepartureRefresh    = 120 * time.Second
	DefaultRefresh          = 5 * time.Minute
)

// RefreshInterval is how often realtime data of a trip starting at start
// should be refreshed.
func RefreshInterval(now, start time.Time) time.Duration {
	until := start.Sub(now)
	switch {
	case until <= CloseToDepartureBand:
		return CloseToDepartureRefresh
	case until <= NearDepartureBand:
		return NearDepartureRefresh
	case until <= SoonDepartureBand:
		return SoonDepartureRefresh
	default:
		return DefaultRefresh
	}
}

// EarliestStart returns the smallest expected start time among trips.
func EarliestStart(trips []models.TripPattern) (time.Time, bool) {
	if len(trips) == 0 {
		return time.Time{}, false
	}
	earliest := trips[0].ExpectedStartTime
	for _, t := range trips[1:] {
		if t.ExpectedStartTime.Before(earliest) {
			earliest = t.ExpectedStartTime
		}
	}
	return earliest, true
}
