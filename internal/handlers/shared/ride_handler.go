package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickride/internal/middleware"
	"quickride/internal/models"
	"quickride/internal/services"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
)

type RideHandler struct {
	rideService services.RideService
	logger      *logger.Logger
}

func NewRideHandler(rideService services.RideService, logger *logger.Logger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		logger:      logger,
	}
}

// CreateRide books a ride for the calling user and offers it to nearby riders
func (h *RideHandler) CreateRide(c *gin.Context) {
	var request validators.CreateRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateCreateRide(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), principal.ID, request.Pickup, request.Destination, models.VehicleType(request.VehicleType))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// GetFare quotes every vehicle class for a trip
func (h *RideHandler) GetFare(c *gin.Context) {
	var query validators.FareQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateFareQuery(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	quote, err := h.rideService.Quote(c.Request.Context(), query.Pickup, query.Destination)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Fare retrieved successfully", quote)
}

func (h *RideHandler) ConfirmRide(c *gin.Context) {
	var request validators.RideIDRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRideID(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, _ := validators.ParseObjectID(request.RideID)
	ride, err := h.rideService.Confirm(c.Request.Context(), rideID, principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Ride confirmed successfully", ride)
}

// StartRide reports every refusal as a server error, which is what rider
// clients expect from this endpoint.
func (h *RideHandler) StartRide(c *gin.Context) {
	var query validators.StartRideQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStartRide(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, _ := validators.ParseObjectID(query.RideID)
	ride, err := h.rideService.Start(c.Request.Context(), rideID, query.OTP, principal.ID)
	if err != nil {
		if errors.Is(err, services.ErrConflict) || errors.Is(err, services.ErrNotFound) {
			utils.ErrorResponse(c, http.StatusInternalServerError, "RIDE_NOT_STARTED", services.Message(err, ""))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Ride started successfully", ride)
}

func (h *RideHandler) EndRide(c *gin.Context) {
	var request validators.RideIDRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRideID(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rideID, _ := validators.ParseObjectID(request.RideID)
	ride, err := h.rideService.End(c.Request.Context(), rideID, principal.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Ride ended successfully", ride)
}

func (h *RideHandler) CancelRide(c *gin.Context) {
	var query validators.RideIDRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateRideID(&query); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	rideID, _ := validators.ParseObjectID(query.RideID)
	ride, err := h.rideService.Cancel(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Ride cancelled successfully", ride)
}

// GetShareDetails is public; it only exposes what a shared trip link needs
func (h *RideHandler) GetShareDetails(c *gin.Context) {
	var param validators.RideIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}
	if errs := validators.ValidateStruct(&param); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	rideID, _ := validators.ParseObjectID(param.ID)
	details, err := h.rideService.ShareDetails(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Ride details retrieved successfully", details)
}

func (h *RideHandler) GetChatDetails(c *gin.Context) {
	var param validators.RideIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.BadRequestResponse(c, "Invalid ride ID")
		return
	}
	if errs := validators.ValidateStruct(&param); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	rideID, _ := validators.ParseObjectID(param.ID)
	details, err := h.rideService.ChatDetails(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Chat retrieved successfully", details)
}
