package normalizer

import (
	"strings"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// Leg maps one raw leg.
func Leg(raw upstream.RawLeg) models.Leg {
	leg := models.Leg{
		Mode:              models.CanonicalLegMode(models.ParseMode(raw.Mode)),
		TransportSubmode:  models.Submode(raw.TransportSubmode),
		Distance:          raw.Distance,
		Duration:          raw.Duration,
		AimedStartTime:    raw.AimedStartTime.Time,
		AimedEndTime:      raw.AimedEndTime.Time,
		ExpectedStartTime: orTime(raw.ExpectedStartTime, raw.AimedStartTime),
		ExpectedEndTime:   orTime(raw.ExpectedEndTime, raw.AimedEndTime),
		Realtime:          raw.Realtime,
		FromPlace:         place(raw.FromPlace),
		ToPlace:           place(raw.ToPlace),
		Notices:           legNotices(raw),
	}

	if raw.Line != nil {
		leg.Line = &models.Line{
			ID:               raw.Line.ID,
			Name:             raw.Line.Name,
			PublicCode:       raw.Line.PublicCode,
			TransportMode:    models.ParseMode(raw.Line.TransportMode),
			TransportSubmode: models.Submode(raw.Line.TransportSubmode),
			FlexibleLineType: raw.Line.FlexibleLineType,
		}
		leg.Flexible = raw.Line.FlexibleLineType != ""
	}

	if raw.Authority != nil {
		leg.Authority = &models.Authority{
			ID:        raw.Authority.ID,
			Name:      raw.Authority.Name,
			URL:       raw.Authority.URL,
			CodeSpace: CodeSpace(raw.Authority.ID),
		}
	}

	if raw.ServiceJourney != nil {
		leg.ServiceJourney = &models.ServiceJourney{
			ID:         raw.ServiceJourney.ID,
			PublicCode: raw.ServiceJourney.PublicCode,
		}
	}

	// Boarding happens at a platform; show its name instead of the stop's.
	if leg.IsTransit() && !leg.Flexible && leg.FromPlace.Quay != nil && leg.FromPlace.Quay.Name != "" {
		leg.FromPlace.Name = leg.FromPlace.Quay.Name
	}

	return leg
}

// CodeSpace returns the codespace prefix of a NeTEx id, "ATB" for
// "ATB:Authority:2".
func CodeSpace(id string) string {
	if i := strings.IndexByte(id, ':'); i > 0 {
		return id[:i]
	}
	return ""
}

func place(raw upstream.RawPlace) models.Place {
	p := models.Place{
		Name:      raw.Name,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
	}
	if raw.Quay != nil {
		p.Quay = &models.Quay{ID: raw.Quay.ID, Name: raw.Quay.Name, PublicCode: raw.Quay.PublicCode}
	}
	if raw.BikeRentalStation != nil {
		p.BikeRentalStation = &models.BikeRentalStation{ID: raw.BikeRentalStation.ID, Name: raw.BikeRentalStation.Name}
	}
	return p
}

func legNotices(raw upstream.RawLeg) []models.Notice {
	var sources [][]upstream.RawNotice
	if raw.FromEstimatedCall != nil {
		sources = append(sources, raw.FromEstimatedCall.Notices)
	}
	for _, call := range raw.IntermediateEstimatedCalls {
		sources = append(sources, call.Notices)
	}
	if sj := raw.ServiceJourney; sj != nil {
		sources = append(sources, sj.Notices)
		if sj.JourneyPattern != nil {
			sources = append(sources, sj.JourneyPattern.Notices)
		}
	}
	if raw.Line != nil {
		sources = append(sources, raw.Line.Notices)
	}

	var notices []models.Notice
	seen := make(map[string]bool)
	for _, src := range sources {
		for _, n := range src {
			if n.Text == "" || seen[n.Text] {
				continue
			}
			seen[n.Text] = true
			notices = append(notices, models.Notice{ID: n.ID, Text: n.Text})
		}
	}
	return notices
}
