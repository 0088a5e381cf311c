// Package normalizer maps raw journey-planner trip patterns into the
// internal trip representation.
package normalizer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// SeedLength is the length of the id prefix shared by every trip pattern
// produced by one Normalizer. Cache entries for the search that produced a
// pattern are keyed by this prefix.
const SeedLength = 23

// Normalizer assigns ids that sort in generation order.
type Normalizer struct {
	seed    string
	counter atomic.Uint64
}

func New() *Normalizer {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return NewWithSeed(strings.ReplaceAll(u.String(), "-", ""))
}

// NewWithSeed is New with a fixed seed, padded or cut to SeedLength.
func NewWithSeed(seed string) *Normalizer {
	if len(seed) < SeedLength {
		seed += strings.Repeat("0", SeedLength-len(seed))
	}
	return &Normalizer{seed: seed[:SeedLength]}
}

func (n *Normalizer) Seed() string {
	return n.seed
}

func (n *Normalizer) NextID() string {
	return fmt.Sprintf("%s%09d", n.seed, n.counter.Add(1))
}

// DerivedID returns the search-level key of a trip pattern id.
func DerivedID(tripPatternID string) string {
	if len(tripPatternID) <= SeedLength {
		return tripPatternID
	}
	return tripPatternID[:SeedLength]
}

func (n *Normalizer) TripPatterns(raws []upstream.RawTripPattern) []models.TripPattern {
	result := make([]models.TripPattern, 0, len(raws))
	for _, raw := range raws {
		result = append(result, n.TripPattern(raw))
	}
	return result
}

func (n *Normalizer) TripPattern(raw upstream.RawTripPattern) models.TripPattern {
	id := raw.ID
	if id == "" {
		id = n.NextID()
	}

	legs := make([]models.Leg, len(raw.Legs))
	for i, l := range raw.Legs {
		legs[i] = Leg(l)
	}

	notices := make([]models.SystemNotice, len(raw.SystemNotices))
	for i, sn := range raw.SystemNotices {
		notices[i] = models.SystemNotice{Tag: sn.Tag, Text: sn.Text}
	}

	return models.TripPattern{
		ID:                id,
		StartTime:         raw.StartTime.Time,
		EndTime:           raw.EndTime.Time,
		ExpectedStartTime: orTime(raw.ExpectedStartTime, raw.StartTime),
		ExpectedEndTime:   orTime(raw.ExpectedEndTime, raw.EndTime),
		Duration:          raw.Duration,
		Distance:          raw.Distance,
		WalkDistance:      raw.WalkDistance,
		Legs:              legs,
		SystemNotices:     notices,
	}
}

func orTime(t, fallback upstream.Timestamp) time.Time {
	if t.IsZero() {
		return fallback.Time
	}
	return t.Time
}
