package models

import "time"

type Notice struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type SystemNotice struct {
	Tag  string `json:"tag"`
	Text string `json:"text,omitempty"`
}

type Authority struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	CodeSpace string `json:"codeSpace,omitempty"`
}

type Line struct {
	ID               string  `json:"id"`
	Name             string  `json:"name,omitempty"`
	PublicCode       string  `json:"publicCode,omitempty"`
	TransportMode    Mode    `json:"transportMode,omitempty"`
	TransportSubmode Submode `json:"transportSubmode,omitempty"`
	FlexibleLineType string  `json:"flexibleLineType,omitempty"`
}

type Quay struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PublicCode string `json:"publicCode,omitempty"`
}

type BikeRentalStation struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Place struct {
	Name              string             `json:"name"`
	Latitude          float64            `json:"latitude"`
	Longitude         float64            `json:"longitude"`
	Quay              *Quay              `json:"quay,omitempty"`
	BikeRentalStation *BikeRentalStation `json:"bikeRentalStation,omitempty"`
}

type ServiceJourney struct {
	ID         string `json:"id"`
	PublicCode string `json:"publicCode,omitempty"`
}

type Leg struct {
	Mode              Mode            `json:"mode"`
	TransportSubmode  Submode         `json:"transportSubmode,omitempty"`
	Distance          float64         `json:"distance"`
	Duration          int             `json:"duration"`
	AimedStartTime    time.Time       `json:"aimedStartTime"`
	AimedEndTime      time.Time       `json:"aimedEndTime"`
	ExpectedStartTime time.Time       `json:"expectedStartTime"`
	ExpectedEndTime   time.Time       `json:"expectedEndTime"`
	Realtime          bool            `json:"realtime"`
	FromPlace         Place           `json:"fromPlace"`
	ToPlace           Place           `json:"toPlace"`
	Line              *Line           `json:"line,omitempty"`
	Authority         *Authority      `json:"authority,omitempty"`
	ServiceJourney    *ServiceJourney `json:"serviceJourney,omitempty"`
	Notices           []Notice        `json:"notices,omitempty"`
	Flexible          bool            `json:"flexible"`
}

// IsTransit reports whether the leg is carried by a transit service.
func (l Leg) IsTransit() bool {
	return !l.Mode.IsStreetMode()
}

// DurationTime returns the leg duration as a time.Duration.
func (l Leg) DurationTime() time.Duration {
	return time.Duration(l.Duration) * time.Second
}

type TripPattern struct {
	ID                string         `json:"id"`
	StartTime         time.Time      `json:"startTime"`
	EndTime           time.Time      `json:"endTime"`
	ExpectedStartTime time.Time      `json:"expectedStartTime"`
	ExpectedEndTime   time.Time      `json:"expectedEndTime"`
	Duration          int            `json:"duration"`
	Distance          float64        `json:"distance"`
	WalkDistance      float64        `json:"walkDistance"`
	Legs              []Leg          `json:"legs"`
	SystemNotices     []SystemNotice `json:"systemNotices,omitempty"`
}

// DurationTime returns the total trip duration as a time.Duration.
func (t TripPattern) DurationTime() time.Duration {
	return time.Duration(t.Duration) * time.Second
}

type RoutingErrorCode string

const (
	RoutingErrorLocationNotFound                  RoutingErrorCode = "locationNotFound"
	RoutingErrorNoStopsInRange                    RoutingErrorCode = "noStopsInRange"
	RoutingErrorNoTransitConnection               RoutingErrorCode = "noTransitConnection"
	RoutingErrorNoTransitConnectionInSearchWindow RoutingErrorCode = "noTransitConnectionInSearchWindow"
	RoutingErrorOutsideBounds                     RoutingErrorCode = "outsideBounds"
	RoutingErrorOutsideServicePeriod              RoutingErrorCode = "outsideServicePeriod"
	RoutingErrorSystemError                       RoutingErrorCode = "systemError"
	RoutingErrorWalkingBetterThanTransit          RoutingErrorCode = "walkingBetterThanTransit"
)

type InputField string

const (
	InputFieldDateTime InputField = "dateTime"
	InputFieldFrom     InputField = "from"
	InputFieldTo       InputField = "to"
)

type RoutingError struct {
	Code        RoutingErrorCode `json:"code"`
	InputField  InputField       `json:"inputField,omitempty"`
	Description string           `json:"description,omitempty"`
}

// IsHopeless reports whether retrying the search cannot change the outcome.
func (e RoutingError) IsHopeless() bool {
	switch e.Code {
	case RoutingErrorOutsideServicePeriod,
		RoutingErrorOutsideBounds,
		RoutingErrorLocationNotFound,
		RoutingErrorWalkingBetterThanTransit,
		RoutingErrorSystemError:
		return true
	}
	return false
}

// Metadata is the upstream search-window bookkeeping of one query.
type Metadata struct {
	SearchWindowUsed int       `json:"searchWindowUsed"`
	NextDateTime     time.Time `json:"nextDateTime"`
	PrevDateTime     time.Time `json:"prevDateTime"`
}

// NextSearchDate returns the instant a following page starts from.
func (m Metadata) NextSearchDate(arriveBy bool) time.Time {
	if arriveBy {
		return m.PrevDateTime
	}
	return m.NextDateTime
}
