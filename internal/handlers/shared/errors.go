package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickride/internal/services"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
)

// respondError maps a service error kind onto the response envelope.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	message := services.Message(err, utils.ErrInternalServer)

	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponseWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", message, services.Details(err))
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, message)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, message)
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, message)
	case errors.Is(err, services.ErrInvalidOTP):
		utils.ErrorResponse(c, http.StatusInternalServerError, "INVALID_OTP", message)
	case errors.Is(err, services.ErrUpstream):
		log.WithContext(c.Request.Context()).WithError(err).Warn("Upstream call failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "UPSTREAM_ERROR", message)
	default:
		log.WithContext(c.Request.Context()).WithError(err).Error("Request failed")
		utils.InternalServerErrorResponse(c)
	}
}

func respondValidation(c *gin.Context, errs validators.ValidationErrors) {
	utils.ValidationErrorResponse(c, errs.ToMap())
}
