package timezone

import (
	"time"
	_ "time/tzdata"
)

// DefaultServiceZone is the zone whose calendar days bound date widening.
const DefaultServiceZone = "Europe/Oslo"

// Load resolves a zone name, falling back to UTC for unknown names.
func Load(name string) *time.Location {
	if name == "" {
		name = DefaultServiceZone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextDayStart returns midnight of the calendar day after t in loc.
func NextDayStart(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1)
}

// PreviousDayEnd returns the last second of the calendar day before t in loc.
func PreviousDayEnd(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).Add(-time.Second)
}

// CalendarDaysBetween counts calendar-day boundaries between from and to in
// loc. The result is never negative.
func CalendarDaysBetween(from, to time.Time, loc *time.Location) int {
	a := StartOfDay(from, loc)
	b := StartOfDay(to, loc)
	if b.Before(a) {
		a, b = b, a
	}
	days := 0
	for a.Before(b) {
		a = a.AddDate(0, 0, 1)
		days++
	}
	return days
}

// ParseTimeWithOffset accepts the timestamp layouts the journey planner
// emits, with or without a colon in the offset. A timestamp without an
// offset is rejected.
func ParseTimeWithOffset(timeStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05-0700", // Without colon
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05Z",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}
