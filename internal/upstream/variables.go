package upstream

import (
	"time"

	"github.com/dharmasatrya/tripsearch/internal/models"
)

// TripVariables are the GraphQL variables of the trip query.
type TripVariables struct {
	From            models.Location          `json:"from"`
	To              models.Location          `json:"to"`
	DateTime        time.Time                `json:"dateTime"`
	ArriveBy        bool                     `json:"arriveBy"`
	NumTripPatterns int                      `json:"numTripPatterns,omitempty"`
	SearchWindow    *int                     `json:"searchWindow,omitempty"`
	Modes           *models.Modes            `json:"modes,omitempty"`
	Banned          *models.InputBanned      `json:"banned,omitempty"`
	WhiteListed     *models.InputWhiteListed `json:"whiteListed,omitempty"`
	WalkSpeed       *float64                 `json:"walkSpeed,omitempty"`
	TransferSlack   *int                     `json:"transferSlack,omitempty"`
	TransferPenalty *int                     `json:"transferPenalty,omitempty"`
	WaitReluctance  *float64                 `json:"waitReluctance,omitempty"`
	WalkReluctance  *float64                 `json:"walkReluctance,omitempty"`
}

// VariablesFromParams resolves search params into query variables.
func VariablesFromParams(p models.SearchParams, numTripPatterns int) TripVariables {
	p = p.Clone()
	return TripVariables{
		From:            p.From,
		To:              p.To,
		DateTime:        p.SearchDate,
		ArriveBy:        p.ArriveBy,
		NumTripPatterns: numTripPatterns,
		SearchWindow:    p.SearchWindow,
		Modes:           p.Modes,
		Banned:          p.Banned,
		WhiteListed:     p.WhiteListed,
		WalkSpeed:       p.WalkSpeed,
		TransferSlack:   p.MinimumTransferTime,
		TransferPenalty: p.TransferPenalty,
		WaitReluctance:  p.WaitReluctance,
		WalkReluctance:  p.WalkReluctance,
	}
}
