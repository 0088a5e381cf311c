package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripsearch/internal/cache"
	"github.com/dharmasatrya/tripsearch/internal/diagnostics"
	"github.com/dharmasatrya/tripsearch/internal/models"
	"github.com/dharmasatrya/tripsearch/internal/modes"
	"github.com/dharmasatrya/tripsearch/internal/ranking"
	"github.com/dharmasatrya/tripsearch/internal/search"
	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// Searcher runs trip searches against the journey planner.
type Searcher interface {
	Trips(ctx context.Context, params models.SearchParams, headers http.Header) (*search.Result, error)
	NonTransit(ctx context.Context, params models.SearchParams, modes []models.StreetMode, headers http.Header) (map[models.StreetMode]models.TripPattern, error)
}

type SearchHandler struct {
	searcher Searcher
	cache    cache.Cache
	writer   *cache.Writer
	links    *diagnostics.LinkBuilder
	now      func() time.Time
}

func NewSearchHandler(s Searcher, c cache.Cache, w *cache.Writer, links *diagnostics.LinkBuilder) *SearchHandler {
	return &SearchHandler{
		searcher: s,
		cache:    c,
		writer:   w,
		links:    links,
		now:      time.Now,
	}
}

func (h *SearchHandler) Trips(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var req models.TripsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}

	result, err := h.searcher.Trips(ctx, h.tripsParams(req), outboundHeaders(c))
	if err != nil {
		return h.searchError(c, err)
	}

	h.writer.StoreSearch(result.TripPatterns, result.Params)

	resp := models.TripsResponse{
		TripPatterns:           result.TripPatterns,
		HasFlexibleTripPattern: result.HasFlexibleTripPattern,
		IsTaxiSearch:           result.IsTaxiSearch,
		RoutingErrors:          result.RoutingErrors,
		Metadata: models.SearchMetadata{
			QueryCount:   len(result.Queries),
			SearchTimeMs: time.Since(startTime).Milliseconds(),
		},
	}
	if result.NextCursor != "" {
		resp.NextCursor = &result.NextCursor
	}
	if start, ok := ranking.EarliestStart(result.TripPatterns); ok {
		resp.RefreshIntervalSeconds = int(ranking.RefreshInterval(h.now(), start).Seconds())
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) tripsParams(req models.TripsRequest) models.SearchParams {
	searchDate := h.now()
	if req.When != nil {
		searchDate = *req.When
	}

	return models.SearchParams{
		From:                req.From,
		To:                  req.To,
		SearchDate:          searchDate,
		InitialSearchDate:   searchDate,
		ArriveBy:            req.ArriveBy,
		Modes:               modes.Compile(req.Filters),
		Banned:              req.Banned,
		WhiteListed:         req.WhiteListed,
		WalkSpeed:           req.WalkSpeed,
		MinimumTransferTime: req.MinimumTransferTime,
		WalkReluctance:      req.WalkReluctance,
		WaitReluctance:      req.WaitReluctance,
		TransferPenalty:     req.TransferPenalty,
		SearchWindow:        req.SearchWindow,
		UseFlex:             true,
		Cursor:              req.Cursor,
	}
}

func (h *SearchHandler) NonTransit(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.NonTransitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	if err := req.Validate(); err != nil {
		return validationError(c, err)
	}

	searchDate := h.now()
	if req.When != nil {
		searchDate = *req.When
	}
	params := models.SearchParams{
		From:              req.From,
		To:                req.To,
		SearchDate:        searchDate,
		InitialSearchDate: searchDate,
		ArriveBy:          req.ArriveBy,
		WalkSpeed:         req.WalkSpeed,
	}

	trips, err := h.searcher.NonTransit(ctx, params, req.DirectModes, outboundHeaders(c))
	if err != nil {
		return h.searchError(c, err)
	}

	stored := make([]models.TripPattern, 0, len(trips))
	for _, mode := range req.DirectModes {
		if trip, ok := trips[mode]; ok {
			stored = append(stored, trip)
		}
	}
	h.writer.StoreSearch(stored, params)

	return c.JSON(http.StatusOK, models.NonTransitResponse{TripPatterns: trips})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func (h *SearchHandler) searchError(c echo.Context, err error) error {
	logger := log.With().Str("correlation_id", correlationID(c)).Logger()

	var routingErr *search.RoutingFailedError
	if errors.As(err, &routingErr) {
		logger.Info().Err(err).Msg("Search ended with routing errors")
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:         "routing_error",
			Message:       err.Error(),
			Code:          http.StatusUnprocessableEntity,
			RoutingErrors: routingErr.RoutingErrors,
			Diagnostics:   h.links.TripQueryLinks(routingErr.Queries),
		})
	}

	var queryErr *upstream.QueryError
	if errors.As(err, &queryErr) {
		logger.Error().Err(err).Str("upstream", queryErr.Upstream).Msg("Journey planner query failed")
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:       "upstream_error",
			Message:     "Journey planner query failed",
			Code:        http.StatusBadGateway,
			Diagnostics: h.links.TripQueryLinks([]upstream.TripVariables{queryErr.Variables}),
		})
	}

	logger.Error().Err(err).Msg("Search failed")
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: "Failed to search trips: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

// correlationID is the request id assigned by the RequestID middleware, or
// the one the client sent.
func correlationID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(upstream.HeaderCorrelationID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func outboundHeaders(c echo.Context) http.Header {
	headers := http.Header{}
	if id := correlationID(c); id != "" {
		headers.Set(upstream.HeaderCorrelationID, id)
	}
	return headers
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
