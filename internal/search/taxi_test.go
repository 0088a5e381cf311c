package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

func TestTaxiSidesFor(t *testing.T) {
	tests := []struct {
		name   string
		errs   []models.RoutingError
		expect taxiSides
	}{
		{name: "no errors", expect: taxiSides{}},
		{
			name:   "no stops near origin",
			errs:   []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldFrom}},
			expect: taxiSides{front: true},
		},
		{
			name:   "no stops near destination",
			errs:   []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldTo}},
			expect: taxiSides{back: true},
		},
		{
			name: "both ends",
			errs: []models.RoutingError{
				{Code: models.RoutingErrorNoStopsInRange, InputField: models.InputFieldFrom},
				{Code: models.RoutingErrorNoTransitConnection, InputField: models.InputFieldTo},
			},
			expect: taxiSides{front: true, back: true},
		},
		{
			name:   "no transit connection without field",
			errs:   []models.RoutingError{{Code: models.RoutingErrorNoTransitConnection}},
			expect: taxiSides{front: true, back: true},
		},
		{
			name:   "no stops in range without field",
			errs:   []models.RoutingError{{Code: models.RoutingErrorNoStopsInRange}},
			expect: taxiSides{front: true, back: true},
		},
		{
			name:   "unrelated code",
			errs:   []models.RoutingError{{Code: models.RoutingErrorNoTransitConnectionInSearchWindow, InputField: models.InputFieldFrom}},
			expect: taxiSides{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, taxiSidesFor(tt.errs))
		})
	}
}

func TestBeeline(t *testing.T) {
	assert.InDelta(t, 0, beeline(*oslo, *oslo), 0.001)

	d := beeline(*oslo, *bergen)
	assert.Greater(t, d, 290000.0)
	assert.Less(t, d, 320000.0)

	assert.Less(t, beeline(*oslo, *majorst), 5000.0)
}

func TestWithinTaxiDistance(t *testing.T) {
	params := models.SearchParams{
		From: models.Location{Coordinates: oslo},
		To:   models.Location{Coordinates: majorst},
	}
	assert.True(t, withinTaxiDistance(params))

	params.To.Coordinates = bergen
	assert.False(t, withinTaxiDistance(params))

	params.To = models.Location{Place: "NSR:StopPlace:59872"}
	assert.True(t, withinTaxiDistance(params))
}

func TestTaxiModes(t *testing.T) {
	filtered := &models.Modes{
		AccessMode:     models.StreetModeFoot,
		EgressMode:     models.StreetModeFoot,
		DirectMode:     models.StreetModeFoot,
		TransportModes: []models.TransportMode{{TransportMode: models.ModeRail}},
	}

	m := taxiModes(filtered, taxiSides{front: true})
	assert.Equal(t, models.StreetModeCarPickup, m.AccessMode)
	assert.Equal(t, models.StreetModeFoot, m.EgressMode)
	assert.Empty(t, m.DirectMode)
	assert.Equal(t, filtered.TransportModes, m.TransportModes)

	m = taxiModes(nil, taxiSides{back: true})
	assert.Equal(t, models.StreetModeFoot, m.AccessMode)
	assert.Equal(t, models.StreetModeCarDropoff, m.EgressMode)
	assert.Nil(t, m.TransportModes)
}
