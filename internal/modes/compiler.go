// Package modes compiles client transport filters into upstream mode filters.
package modes

import (
	"slices"
	"strings"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

// Filter is a coarse client-side transport filter token.
type Filter string

const (
	FilterAir      Filter = "air"
	FilterBus      Filter = "bus"
	FilterCoach    Filter = "coach"
	FilterMetro    Filter = "metro"
	FilterRail     Filter = "rail"
	FilterTram     Filter = "tram"
	FilterWater    Filter = "water"
	FilterFlytog   Filter = "flytog"
	FilterFlybuss  Filter = "flybuss"
	FilterCarFerry Filter = "car_ferry"
)

var baseModes = map[Filter]models.Mode{
	FilterAir:   models.ModeAir,
	FilterBus:   models.ModeBus,
	FilterCoach: models.ModeCoach,
	FilterMetro: models.ModeMetro,
	FilterRail:  models.ModeRail,
	FilterTram:  models.ModeTram,
	FilterWater: models.ModeWater,
}

var pseudoFilters = map[Filter]bool{
	FilterFlytog:   true,
	FilterFlybuss:  true,
	FilterCarFerry: true,
}

// ParseFilters canonicalizes client tokens and drops unknown ones.
func ParseFilters(tokens []string) []Filter {
	var out []Filter
	for _, tok := range tokens {
		f := Filter(strings.ToLower(strings.TrimSpace(tok)))
		if _, ok := baseModes[f]; !ok && !pseudoFilters[f] {
			continue
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

type filterSet map[Filter]bool

func (s filterSet) any(fs []Filter) bool {
	for _, f := range fs {
		if s[f] {
			return true
		}
	}
	return false
}

// overlay toggles a sub-mode slice of one mode. When any trigger is
// selected but the owner filter is not, the mode is added restricted to the
// sub-modes. When the owner is selected and no trigger is, the sub-modes are
// removed from the mode. Selecting both sides leaves the mode untouched.
type overlay struct {
	mode     models.Mode
	submodes []models.Submode
	owner    Filter
	triggers []Filter
}

var overlays = []overlay{
	{ // rail replacement bus
		mode:     models.ModeBus,
		submodes: []models.Submode{models.SubmodeRailReplacementBus},
		owner:    FilterBus,
		triggers: []Filter{FilterRail, FilterFlytog},
	},
	{ // airport express train
		mode:     models.ModeRail,
		submodes: []models.Submode{models.SubmodeAirportLinkRail},
		owner:    FilterRail,
		triggers: []Filter{FilterFlytog},
	},
	{ // airport express bus
		mode:     models.ModeBus,
		submodes: []models.Submode{models.SubmodeAirportLinkBus},
		owner:    FilterBus,
		triggers: []Filter{FilterFlybuss},
	},
	{ // car ferries
		mode:     models.ModeWater,
		submodes: models.CarFerrySubmodes,
		owner:    FilterWater,
		triggers: []Filter{FilterCarFerry},
	},
}

func (o overlay) apply(acc []models.TransportMode, set filterSet) []models.TransportMode {
	triggered := set.any(o.triggers)
	owned := set[o.owner]

	idx := slices.IndexFunc(acc, func(tm models.TransportMode) bool {
		return tm.TransportMode == o.mode
	})

	switch {
	case triggered && !owned:
		if idx < 0 {
			return append(acc, models.TransportMode{
				TransportMode:     o.mode,
				TransportSubModes: slices.Clone(o.submodes),
			})
		}
		if acc[idx].TransportSubModes == nil {
			return acc
		}
		merged := slices.Clone(acc[idx].TransportSubModes)
		for _, sm := range o.submodes {
			if !slices.Contains(merged, sm) {
				merged = append(merged, sm)
			}
		}
		acc[idx].TransportSubModes = merged
	case owned && !triggered:
		if idx < 0 {
			return acc
		}
		current := acc[idx].TransportSubModes
		if current == nil {
			current = models.AllSubmodes(o.mode)
		}
		remaining := make([]models.Submode, 0, len(current))
		for _, sm := range current {
			if !slices.Contains(o.submodes, sm) {
				remaining = append(remaining, sm)
			}
		}
		acc[idx].TransportSubModes = remaining
	}
	return acc
}

// Compile turns client filter tokens into upstream modes. It returns nil
// when no recognized filter is given, leaving the upstream defaults in place.
func Compile(tokens []string) *models.Modes {
	filters := ParseFilters(tokens)
	if len(filters) == 0 {
		return nil
	}

	set := make(filterSet, len(filters))
	for _, f := range filters {
		set[f] = true
	}

	var acc []models.TransportMode
	for _, f := range filters {
		if mode, ok := baseModes[f]; ok {
			acc = append(acc, models.TransportMode{TransportMode: mode})
		}
	}
	for _, o := range overlays {
		acc = o.apply(acc, set)
	}
	if acc == nil {
		acc = []models.TransportMode{}
	}

	return &models.Modes{
		AccessMode:     models.StreetModeFoot,
		EgressMode:     models.StreetModeFoot,
		DirectMode:     models.StreetModeFoot,
		TransportModes: acc,
	}
}

// Find returns the entry for mode, if present.
func Find(m *models.Modes, mode models.Mode) (models.TransportMode, bool) {
	if m == nil {
		return models.TransportMode{}, false
	}
	for _, tm := range m.TransportModes {
		if tm.TransportMode == mode {
			return tm, true
		}
	}
	return models.TransportMode{}, false
}
