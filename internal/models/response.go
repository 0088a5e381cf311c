package models

type TripsResponse struct {
	TripPatterns           []TripPattern  `json:"tripPatterns"`
	NextCursor             *string        `json:"nextCursor,omitempty"`
	HasFlexibleTripPattern bool           `json:"hasFlexibleTripPattern"`
	IsTaxiSearch           bool           `json:"isTaxiSearch,omitempty"`
	RoutingErrors          []RoutingError `json:"routingErrors,omitempty"`
	RefreshIntervalSeconds int            `json:"refreshIntervalSeconds,omitempty"`
	Metadata               SearchMetadata `json:"metadata"`
}

type SearchMetadata struct {
	QueryCount   int   `json:"queryCount"`
	SearchTimeMs int64 `json:"searchTimeMs"`
}

type NonTransitResponse struct {
	TripPatterns map[StreetMode]TripPattern `json:"tripPatterns"`
}

type SingleTripResponse struct {
	TripPattern  TripPattern   `json:"tripPattern"`
	SearchParams *SearchParams `json:"searchParams,omitempty"`
}

type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Code          int            `json:"code"`
	RoutingErrors []RoutingError `json:"routingErrors,omitempty"`
	Diagnostics   []string       `json:"diagnostics,omitempty"`
}
