package models

import "strings"

// Mode is a transport mode as used on legs and in upstream mode filters.
type Mode string

const (
	ModeAir        Mode = "air"
	ModeBicycle    Mode = "bicycle"
	ModeBus        Mode = "bus"
	ModeCableway   Mode = "cableway"
	ModeCar        Mode = "car"
	ModeCoach      Mode = "coach"
	ModeFoot       Mode = "foot"
	ModeFunicular  Mode = "funicular"
	ModeLift       Mode = "lift"
	ModeMetro      Mode = "metro"
	ModeMonorail   Mode = "monorail"
	ModeRail       Mode = "rail"
	ModeTaxi       Mode = "taxi"
	ModeTram       Mode = "tram"
	ModeTrolleybus Mode = "trolleybus"
	ModeWater      Mode = "water"
	ModeUnknown    Mode = "unknown"
)

var knownModes = map[Mode]bool{
	ModeAir: true, ModeBicycle: true, ModeBus: true, ModeCableway: true, ModeCar: true,
	ModeCoach: true, ModeFoot: true, ModeFunicular: true, ModeLift: true, ModeMetro: true,
	ModeMonorail: true, ModeRail: true, ModeTaxi: true, ModeTram: true, ModeTrolleybus: true,
	ModeWater: true,
}

// ParseMode maps an upstream mode string onto the closed Mode set.
// Unrecognized values become ModeUnknown.
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if knownModes[m] {
		return m
	}
	return ModeUnknown
}

// CanonicalLegMode folds modes that are presented identically to travellers.
func CanonicalLegMode(m Mode) Mode {
	if m == ModeCoach {
		return ModeBus
	}
	return m
}

// IsStreetMode reports whether the mode is walk, bicycle or car.
func (m Mode) IsStreetMode() bool {
	return m == ModeFoot || m == ModeBicycle || m == ModeCar
}

// StreetMode is the access/egress/direct mode of an upstream query.
type StreetMode string

const (
	StreetModeFoot          StreetMode = "foot"
	StreetModeBicycle       StreetMode = "bicycle"
	StreetModeBikeRental    StreetMode = "bike_rental"
	StreetModeCar           StreetMode = "car"
	StreetModeCarPickup     StreetMode = "car_pickup"
	StreetModeCarDropoff    StreetMode = "car_dropoff"
	StreetModeFlexible      StreetMode = "flexible"
	StreetModeScooterRental StreetMode = "scooter_rental"
)

// Submode is an upstream transport sub-mode.
type Submode string

const (
	SubmodeAirportLinkBus     Submode = "airportLinkBus"
	SubmodeAirportLinkRail    Submode = "airportLinkRail"
	SubmodeExpressBus         Submode = "expressBus"
	SubmodeLocalBus           Submode = "localBus"
	SubmodeNightBus           Submode = "nightBus"
	SubmodeRailReplacementBus Submode = "railReplacementBus"
	SubmodeRegionalBus        Submode = "regionalBus"
	SubmodeSchoolBus          Submode = "schoolBus"
	SubmodeShuttleBus         Submode = "shuttleBus"
	SubmodeSightseeingBus     Submode = "sightseeingBus"

	SubmodeInternational Submode = "international"
	SubmodeInterregional Submode = "interregionalRail"
	SubmodeLocalRail     Submode = "local"
	SubmodeLongDistance  Submode = "longDistance"
	SubmodeNightRail     Submode = "nightRail"
	SubmodeRegionalRail  Submode = "regionalRail"
	SubmodeTouristRail   Submode = "touristRailway"

	SubmodeHighSpeedPassengerService Submode = "highSpeedPassengerService"
	SubmodeHighSpeedVehicleService   Submode = "highSpeedVehicleService"
	SubmodeInternationalCarFerry     Submode = "internationalCarFerry"
	SubmodeInternationalPassenger    Submode = "internationalPassengerFerry"
	SubmodeLocalCarFerry             Submode = "localCarFerry"
	SubmodeLocalPassengerFerry       Submode = "localPassengerFerry"
	SubmodeNationalCarFerry          Submode = "nationalCarFerry"
	SubmodeRegionalCarFerry          Submode = "regionalCarFerry"
	SubmodeSightseeingService        Submode = "sightseeingService"
)

// AllBusSubmodes, AllRailSubmodes and AllWaterSubmodes list every sub-mode
// the upstream knows for the mode. Excluding one sub-mode means sending all
// the others.
var (
	AllBusSubmodes = []Submode{
		SubmodeAirportLinkBus, SubmodeExpressBus, SubmodeLocalBus, SubmodeNightBus,
		SubmodeRailReplacementBus, SubmodeRegionalBus, SubmodeSchoolBus, SubmodeShuttleBus,
		SubmodeSightseeingBus,
	}
	AllRailSubmodes = []Submode{
		SubmodeAirportLinkRail, SubmodeInternational, SubmodeInterregional, SubmodeLocalRail,
		SubmodeLongDistance, SubmodeNightRail, SubmodeRegionalRail, SubmodeTouristRail,
	}
	AllWaterSubmodes = []Submode{
		SubmodeHighSpeedPassengerService, SubmodeHighSpeedVehicleService, SubmodeInternationalCarFerry,
		SubmodeInternationalPassenger, SubmodeLocalCarFerry, SubmodeLocalPassengerFerry,
		SubmodeNationalCarFerry, SubmodeRegionalCarFerry, SubmodeSightseeingService,
	}
	CarFerrySubmodes = []Submode{
		SubmodeInternationalCarFerry, SubmodeLocalCarFerry, SubmodeNationalCarFerry,
		SubmodeRegionalCarFerry, SubmodeHighSpeedVehicleService,
	}
)

// AllSubmodes returns the full sub-mode list for a mode, or nil when the
// upstream has no sub-mode catalogue for it.
func AllSubmodes(m Mode) []Submode {
	switch m {
	case ModeBus:
		return AllBusSubmodes
	case ModeRail:
		return AllRailSubmodes
	case ModeWater:
		return AllWaterSubmodes
	}
	return nil
}

// TransportMode is one entry of the upstream transportModes filter. A nil
// TransportSubModes leaves every sub-mode of the mode allowed.
type TransportMode struct {
	TransportMode     Mode      `json:"transportMode"`
	TransportSubModes []Submode `json:"transportSubModes,omitempty"`
}

// Modes is the compiled mode filter of a search.
type Modes struct {
	AccessMode     StreetMode      `json:"accessMode"`
	EgressMode     StreetMode      `json:"egressMode"`
	DirectMode     StreetMode      `json:"directMode,omitempty"`
	TransportModes []TransportMode `json:"transportModes"`
}
