package models

import (
	"slices"
	"time"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a search endpoint: a place id, coordinates, or both.
type Location struct {
	Name        string       `json:"name,omitempty"`
	Place       string       `json:"place,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type InputBanned struct {
	Lines           []string `json:"lines,omitempty"`
	Authorities     []string `json:"authorities,omitempty"`
	Quays           []string `json:"quays,omitempty"`
	QuaysHard       []string `json:"quaysHard,omitempty"`
	ServiceJourneys []string `json:"serviceJourneys,omitempty"`
}

type InputWhiteListed struct {
	Lines       []string `json:"lines,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
}

// SearchParams is the canonical search request threaded through a search
// and its pages. InitialSearchDate is fixed when the first page is requested
// and every derived SearchParams carries it unchanged.
type SearchParams struct {
	From                Location          `json:"from"`
	To                  Location          `json:"to"`
	SearchDate          time.Time         `json:"searchDate"`
	InitialSearchDate   time.Time         `json:"initialSearchDate"`
	ArriveBy            bool              `json:"arriveBy"`
	Modes               *Modes            `json:"modes,omitempty"`
	Banned              *InputBanned      `json:"banned,omitempty"`
	WhiteListed         *InputWhiteListed `json:"whiteListed,omitempty"`
	WalkSpeed           *float64          `json:"walkSpeed,omitempty"`
	MinimumTransferTime *int              `json:"minimumTransferTime,omitempty"`
	WalkReluctance      *float64          `json:"walkReluctance,omitempty"`
	WaitReluctance      *float64          `json:"waitReluctance,omitempty"`
	TransferPenalty     *int              `json:"transferPenalty,omitempty"`
	SearchWindow        *int              `json:"searchWindow,omitempty"`
	UseFlex             bool              `json:"useFlex"`
	Cursor              string            `json:"cursor,omitempty"`
}

// Clone returns a copy that shares no mutable state with p.
func (p SearchParams) Clone() SearchParams {
	c := p
	if p.From.Coordinates != nil {
		coords := *p.From.Coordinates
		c.From.Coordinates = &coords
	}
	if p.To.Coordinates != nil {
		coords := *p.To.Coordinates
		c.To.Coordinates = &coords
	}
	if p.Modes != nil {
		m := *p.Modes
		if p.Modes.TransportModes != nil {
			m.TransportModes = make([]TransportMode, len(p.Modes.TransportModes))
			for i, tm := range p.Modes.TransportModes {
				m.TransportModes[i] = TransportMode{
					TransportMode:     tm.TransportMode,
					TransportSubModes: slices.Clone(tm.TransportSubModes),
				}
			}
		}
		c.Modes = &m
	}
	if p.Banned != nil {
		c.Banned = &InputBanned{
			Lines:           slices.Clone(p.Banned.Lines),
			Authorities:     slices.Clone(p.Banned.Authorities),
			Quays:           slices.Clone(p.Banned.Quays),
			QuaysHard:       slices.Clone(p.Banned.QuaysHard),
			ServiceJourneys: slices.Clone(p.Banned.ServiceJourneys),
		}
	}
	if p.WhiteListed != nil {
		c.WhiteListed = &InputWhiteListed{
			Lines:       slices.Clone(p.WhiteListed.Lines),
			Authorities: slices.Clone(p.WhiteListed.Authorities),
		}
	}
	c.WalkSpeed = clonePtr(p.WalkSpeed)
	c.MinimumTransferTime = clonePtr(p.MinimumTransferTime)
	c.WalkReluctance = clonePtr(p.WalkReluctance)
	c.WaitReluctance = clonePtr(p.WaitReluctance)
	c.TransferPenalty = clonePtr(p.TransferPenalty)
	c.SearchWindow = clonePtr(p.SearchWindow)
	return c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// TripsRequest is the client payload of a trip search.
type TripsRequest struct {
	From                Location          `json:"from"`
	To                  Location          `json:"to"`
	When                *time.Time        `json:"when,omitempty"`
	ArriveBy            bool              `json:"arriveBy"`
	Filters             []string          `json:"filters,omitempty"`
	Banned              *InputBanned      `json:"banned,omitempty"`
	WhiteListed         *InputWhiteListed `json:"whiteListed,omitempty"`
	WalkSpeed           *float64          `json:"walkSpeed,omitempty"`
	MinimumTransferTime *int              `json:"minimumTransferTime,omitempty"`
	WalkReluctance      *float64          `json:"walkReluctance,omitempty"`
	WaitReluctance      *float64          `json:"waitReluctance,omitempty"`
	TransferPenalty     *int              `json:"transferPenalty,omitempty"`
	SearchWindow        *int              `json:"searchWindow,omitempty"`
	Cursor              string            `json:"cursor,omitempty"`
}

func (r *TripsRequest) Validate() error {
	if err := validateLocation(r.From, ErrMissingFrom); err != nil {
		return err
	}
	if err := validateLocation(r.To, ErrMissingTo); err != nil {
		return err
	}
	if r.SearchWindow != nil && *r.SearchWindow <= 0 {
		return ErrInvalidSearchWindow
	}
	if r.WalkSpeed != nil && *r.WalkSpeed <= 0 {
		return ErrInvalidWalkSpeed
	}
	return nil
}

// NonTransitRequest asks for direct street-mode alternatives.
type NonTransitRequest struct {
	From        Location     `json:"from"`
	To          Location     `json:"to"`
	When        *time.Time   `json:"when,omitempty"`
	ArriveBy    bool         `json:"arriveBy"`
	WalkSpeed   *float64     `json:"walkSpeed,omitempty"`
	DirectModes []StreetMode `json:"directModes"`
}

func (r *NonTransitRequest) Validate() error {
	if err := validateLocation(r.From, ErrMissingFrom); err != nil {
		return err
	}
	if err := validateLocation(r.To, ErrMissingTo); err != nil {
		return err
	}
	if len(r.DirectModes) == 0 {
		r.DirectModes = []StreetMode{StreetModeFoot, StreetModeBicycle}
	}
	for _, m := range r.DirectModes {
		switch m {
		case StreetModeFoot, StreetModeBicycle, StreetModeBikeRental, StreetModeCar:
		default:
			return ErrUnsupportedDirectMode
		}
	}
	return nil
}

func validateLocation(l Location, missing ValidationError) error {
	if l.Place == "" && l.Coordinates == nil {
		return missing
	}
	if c := l.Coordinates; c != nil {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return ErrInvalidCoordinates
		}
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingFrom           ValidationError = "from requires a place or coordinates"
	ErrMissingTo             ValidationError = "to requires a place or coordinates"
	ErrInvalidCoordinates    ValidationError = "coordinates are out of range"
	ErrInvalidSearchWindow   ValidationError = "searchWindow must be positive"
	ErrInvalidWalkSpeed      ValidationError = "walkSpeed must be positive"
	ErrUnsupportedDirectMode ValidationError = "directModes supports foot, bicycle, bike_rental and car"
)
