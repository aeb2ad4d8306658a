package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
	"quickride/pkg/maps"
)

type MapHandler struct {
	maps   maps.MapsProvider
	logger *logger.Logger
}

func NewMapHandler(mapsProvider maps.MapsProvider, logger *logger.Logger) *MapHandler {
	return &MapHandler{
		maps:   mapsProvider,
		logger: logger,
	}
}

func (h *MapHandler) GetCoordinates(c *gin.Context) {
	var query validators.CoordinatesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	coords, err := h.maps.Geocode(c.Request.Context(), query.Address)
	if err != nil {
		h.respondMapsError(c, err, "Coordinates not found")
		return
	}

	utils.SuccessResponse(c, "Coordinates retrieved successfully", coords)
}

func (h *MapHandler) GetDistanceTime(c *gin.Context) {
	var query validators.DistanceTimeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	element, err := h.maps.DistanceTime(c.Request.Context(), query.Origin, query.Destination)
	if err != nil {
		h.respondMapsError(c, err, "No routes found")
		return
	}

	utils.SuccessResponse(c, "Distance and time retrieved successfully", element)
}

func (h *MapHandler) GetSuggestions(c *gin.Context) {
	var query validators.SuggestionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	suggestions, err := h.maps.Suggestions(c.Request.Context(), query.Input)
	if err != nil {
		h.respondMapsError(c, err, "No suggestions found")
		return
	}

	utils.SuccessResponse(c, "Suggestions retrieved successfully", suggestions)
}

func (h *MapHandler) respondMapsError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, maps.ErrNoCoordinates) || errors.Is(err, maps.ErrNoRoutes) || errors.Is(err, maps.ErrNoSuggestions) {
		utils.NotFoundResponse(c, notFound)
		return
	}
	h.logger.WithContext(c.Request.Context()).WithError(err).Warn("Maps request failed")
	utils.ErrorResponse(c, http.StatusInternalServerError, "UPSTREAM_ERROR", "Unable to reach the maps service")
}
