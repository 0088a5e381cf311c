package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripsearch/internal/cache"
	"github.com/dharmasatrya/tripsearch/internal/models"
)

// Trip returns a trip pattern from an earlier search, with the params of
// that search when they are still cached.
func (h *SearchHandler) Trip(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var trip models.TripPattern
	found, err := h.cache.Get(ctx, cache.TripPatternKey(id), 0, &trip)
	if err != nil {
		log.Error().Err(err).Str("trip_pattern_id", id).Msg("Failed to read trip pattern")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "cache_error",
			Message: "Failed to read trip pattern",
			Code:    http.StatusInternalServerError,
		})
	}
	if !found {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Trip pattern " + id + " not found or expired",
			Code:    http.StatusNotFound,
		})
	}

	resp := models.SingleTripResponse{TripPattern: trip}

	var params models.SearchParams
	if found, err := h.cache.Get(ctx, cache.SearchParamsKey(id), 0, &params); err != nil {
		log.Warn().Err(err).Str("trip_pattern_id", id).Msg("Failed to read search params")
	} else if found {
		resp.SearchParams = &params
	}

	return c.JSON(http.StatusOK, resp)
}
