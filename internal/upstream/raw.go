package upstream

import (
	"bytes"
	"time"

	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/timezone"
)

// Timestamp decodes the planner's DateTime scalar, which is emitted with or
// without a colon in the zone offset.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := timezone.ParseTimeWithOffset(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

type RawNotice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type RawSystemNotice struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

type RawQuay struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PublicCode string `json:"publicCode"`
}

type RawBikeRentalStation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RawPlace struct {
	Name              string                `json:"name"`
	Latitude          float64               `json:"latitude"`
	Longitude         float64               `json:"longitude"`
	Quay              *RawQuay              `json:"quay"`
	BikeRentalStation *RawBikeRentalStation `json:"bikeRentalStation"`
}

type RawLine struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	PublicCode       string      `json:"publicCode"`
	TransportMode    string      `json:"transportMode"`
	TransportSubmode string      `json:"transportSubmode"`
	FlexibleLineType string      `json:"flexibleLineType"`
	Notices          []RawNotice `json:"notices"`
}

type RawAuthority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type RawJourneyPattern struct {
	Notices []RawNotice `json:"notices"`
}

type RawServiceJourney struct {
	ID             string             `json:"id"`
	PublicCode     string             `json:"publicCode"`
	Notices        []RawNotice        `json:"notices"`
	JourneyPattern *RawJourneyPattern `json:"journeyPattern"`
}

type RawEstimatedCall struct {
	Notices []RawNotice `json:"notices"`
}

type RawLeg struct {
	Mode                       string             `json:"mode"`
	TransportSubmode           string             `json:"transportSubmode"`
	Distance                   float64            `json:"distance"`
	Duration                   int                `json:"duration"`
	Realtime                   bool               `json:"realtime"`
	AimedStartTime             Timestamp          `json:"aimedStartTime"`
	AimedEndTime               Timestamp          `json:"aimedEndTime"`
	ExpectedStartTime          Timestamp          `json:"expectedStartTime"`
	ExpectedEndTime            Timestamp          `json:"expectedEndTime"`
	FromPlace                  RawPlace           `json:"fromPlace"`
	ToPlace                    RawPlace           `json:"toPlace"`
	Line                       *RawLine           `json:"line"`
	Authority                  *RawAuthority      `json:"authority"`
	ServiceJourney             *RawServiceJourney `json:"serviceJourney"`
	FromEstimatedCall          *RawEstimatedCall  `json:"fromEstimatedCall"`
	IntermediateEstimatedCalls []RawEstimatedCall `json:"intermediateEstimatedCalls"`
}

type RawTripPattern struct {
	ID                string            `json:"id,omitempty"`
	StartTime         Timestamp         `json:"startTime"`
	EndTime           Timestamp         `json:"endTime"`
	ExpectedStartTime Timestamp         `json:"expectedStartTime"`
	ExpectedEndTime   Timestamp         `json:"expectedEndTime"`
	Duration          int               `json:"duration"`
	Distance          float64           `json:"distance"`
	WalkDistance      float64           `json:"walkDistance"`
	SystemNotices     []RawSystemNotice `json:"systemNotices"`
	Legs              []RawLeg          `json:"legs"`
}

type rawMetadata struct {
	SearchWindowUsed int       `json:"searchWindowUsed"`
	NextDateTime     Timestamp `json:"nextDateTime"`
	PrevDateTime     Timestamp `json:"prevDateTime"`
}

type rawRoutingError struct {
	Code        string `json:"code"`
	InputField  string `json:"inputField"`
	Description string `json:"description"`
}

type tripResponse struct {
	Data struct {
		Trip *struct {
			Metadata      *rawMetadata      `json:"metadata"`
			RoutingErrors []rawRoutingError `json:"routingErrors"`
			TripPatterns  []RawTripPattern  `json:"tripPatterns"`
		} `json:"trip"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (r *tripResponse) toResult() *TripResult {
	result := &TripResult{}
	trip := r.Data.Trip
	if trip == nil {
		return result
	}

	result.TripPatterns = trip.TripPatterns
	if trip.Metadata != nil {
		result.Metadata = &models.Metadata{
			SearchWindowUsed: trip.Metadata.SearchWindowUsed,
			NextDateTime:     trip.Metadata.NextDateTime.Time,
			PrevDateTime:     trip.Metadata.PrevDateTime.Time,
		}
	}
	for _, re := range trip.RoutingErrors {
		result.RoutingErrors = append(result.RoutingErrors, models.RoutingError{
			Code:        models.RoutingErrorCode(re.Code),
			InputField:  models.InputField(re.InputField),
			Description: re.Description,
		})
	}
	return result
}
