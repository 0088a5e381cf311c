package normalizer

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

func ts(s string) upstream.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return upstream.Timestamp{Time: t}
}

func TestNextID_SortsInGenerationOrder(t *testing.T) {
	n := New()
	ids := make([]string, 0, 1200)
	for i := 0; i < 1200; i++ {
		ids = append(ids, n.NextID())
	}

	assert.True(t, sort.StringsAreSorted(ids))
	for _, id := range ids {
		assert.Equal(t, n.Seed(), DerivedID(id))
	}
	assert.Len(t, n.Seed(), SeedLength)
}

func TestNew_DistinctSeeds(t *testing.T) {
	assert.NotEqual(t, New().Seed(), New().Seed())
}

func TestNewWithSeed_Pads(t *testing.T) {
	n := NewWithSeed("abc")
	assert.Equal(t, "abc00000000000000000000", n.Seed())
	assert.Equal(t, "abc00000000000000000000000000001", n.NextID())
}

func TestTripPattern_KeepsUpstreamID(t *testing.T) {
	n := NewWithSeed("seed")
	tp := n.TripPattern(upstream.RawTripPattern{ID: "given"})
	assert.Equal(t, "given", tp.ID)

	tp = n.TripPattern(upstream.RawTripPattern{})
	assert.Equal(t, "seed0000000000000000000000000001", tp.ID)
}

func TestTripPattern_ExpectedTimesFallBackToAimed(t *testing.T) {
	raw := upstream.RawTripPattern{
		StartTime:         ts("2024-05-02T08:00:00Z"),
		EndTime:           ts("2024-05-02T09:00:00Z"),
		ExpectedStartTime: ts("2024-05-02T08:02:00Z"),
		Duration:          3600,
		Distance:          12000,
		SystemNotices:     []upstream.RawSystemNotice{{Tag: "filtered", Text: "x"}},
	}
	tp := New().TripPattern(raw)

	assert.True(t, tp.ExpectedStartTime.Equal(raw.ExpectedStartTime.Time))
	assert.True(t, tp.ExpectedEndTime.Equal(raw.EndTime.Time))
	assert.Equal(t, []models.SystemNotice{{Tag: "filtered", Text: "x"}}, tp.SystemNotices)
	assert.Equal(t, 12000.0, tp.Distance)
}

func TestLeg_CoachBecomesBus(t *testing.T) {
	assert.Equal(t, models.ModeBus, Leg(upstream.RawLeg{Mode: "coach"}).Mode)
	assert.Equal(t, models.ModeUnknown, Leg(upstream.RawLeg{Mode: "hovercraft"}).Mode)
}

func TestLeg_Authority(t *testing.T) {
	leg := Leg(upstream.RawLeg{
		Mode:      "bus",
		Authority: &upstream.RawAuthority{ID: "ATB:Authority:2", Name: "AtB"},
	})
	require.NotNil(t, leg.Authority)
	assert.Equal(t, "ATB", leg.Authority.CodeSpace)
	assert.Equal(t, "", CodeSpace("nocolon"))
}

func TestLeg_NoticesUnionDeduplicatedByText(t *testing.T) {
	leg := Leg(upstream.RawLeg{
		Mode:              "bus",
		FromEstimatedCall: &upstream.RawEstimatedCall{Notices: []upstream.RawNotice{{ID: "1", Text: "Bring a mask"}}},
		IntermediateEstimatedCalls: []upstream.RawEstimatedCall{
			{Notices: []upstream.RawNotice{{ID: "2", Text: "Stop moved"}}},
			{Notices: []upstream.RawNotice{{ID: "3", Text: "Bring a mask"}}},
		},
		ServiceJourney: &upstream.RawServiceJourney{
			ID:             "ATB:ServiceJourney:1",
			Notices:        []upstream.RawNotice{{ID: "4", Text: "Order by phone"}},
			JourneyPattern: &upstream.RawJourneyPattern{Notices: []upstream.RawNotice{{ID: "5", Text: ""}}},
		},
		Line: &upstream.RawLine{ID: "ATB:Line:1", Notices: []upstream.RawNotice{{ID: "6", Text: "Stop moved"}}},
	})

	assert.Equal(t, []models.Notice{
		{ID: "1", Text: "Bring a mask"},
		{ID: "2", Text: "Stop moved"},
		{ID: "4", Text: "Order by phone"},
	}, leg.Notices)
	assert.Equal(t, "ATB:ServiceJourney:1", leg.ServiceJourney.ID)
}

func TestLeg_FromPlaceNameUsesQuayForTransit(t *testing.T) {
	from := upstream.RawPlace{Name: "Prinsens gate", Quay: &upstream.RawQuay{ID: "NSR:Quay:7", Name: "Prinsens gate P1"}}

	transit := Leg(upstream.RawLeg{Mode: "bus", FromPlace: from, Line: &upstream.RawLine{ID: "L"}})
	assert.Equal(t, "Prinsens gate P1", transit.FromPlace.Name)
	assert.False(t, transit.Flexible)

	walk := Leg(upstream.RawLeg{Mode: "foot", FromPlace: from})
	assert.Equal(t, "Prinsens gate", walk.FromPlace.Name)

	flexible := Leg(upstream.RawLeg{Mode: "bus", FromPlace: from, Line: &upstream.RawLine{ID: "L", FlexibleLineType: "flexibleAreasOnly"}})
	assert.True(t, flexible.Flexible)
	assert.Equal(t, "Prinsens gate", flexible.FromPlace.Name)
}

func TestTripPatterns_Deterministic(t *testing.T) {
	raws := []upstream.RawTripPattern{
		{Legs: []upstream.RawLeg{{Mode: "rail", Duration: 60}}},
		{Legs: []upstream.RawLeg{{Mode: "coach", Duration: 90}}},
	}
	a := NewWithSeed("s").TripPatterns(raws)
	b := NewWithSeed("s").TripPatterns(raws)
	assert.Equal(t, a, b)
	assert.Less(t, a[0].ID, a[1].ID)
}
