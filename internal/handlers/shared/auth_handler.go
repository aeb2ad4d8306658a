package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quickride/internal/middleware"
	"quickride/internal/models"
	"quickride/internal/services"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
)

type AuthHandler struct {
	authService  services.AuthService
	tokenTTL     time.Duration
	secureCookie bool
	logger       *logger.Logger
}

func NewAuthHandler(authService services.AuthService, tokenTTL time.Duration, secureCookie bool, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var request validators.RegisterUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRegisterUser(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	resp, err := h.authService.RegisterUser(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookie(c, resp.Token)
	utils.CreatedResponse(c, "User registered successfully", resp)
}

func (h *AuthHandler) RegisterRider(c *gin.Context) {
	var request validators.RegisterRiderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateRegisterRider(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	resp, err := h.authService.RegisterRider(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookie(c, resp.Token)
	utils.CreatedResponse(c, "Rider registered successfully", resp)
}

// Login returns a handler for the given account type.
func (h *AuthHandler) Login(userType models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request validators.LoginRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}
		if errs := validators.ValidateLogin(&request); len(errs) > 0 {
			respondValidation(c, errs)
			return
		}

		resp, err := h.authService.Login(c.Request.Context(), userType, &request)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		h.setTokenCookie(c, resp.Token)
		utils.SuccessResponse(c, "Logged in successfully", resp)
	}
}

func (h *AuthHandler) Profile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if principal.Rider != nil {
		utils.SuccessResponse(c, "Profile retrieved successfully", gin.H{"rider": principal.Rider})
		return
	}
	utils.SuccessResponse(c, "Profile retrieved successfully", gin.H{"user": principal.User})
}

func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var request validators.UpdateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.UpdateUser(c.Request.Context(), principal.ID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", gin.H{"user": user})
}

func (h *AuthHandler) UpdateRider(c *gin.Context) {
	var request validators.UpdateRiderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	rider, err := h.authService.UpdateRider(c.Request.Context(), principal.ID, &request.RiderData)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", gin.H{"rider": rider})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetCookie(utils.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
	utils.SuccessResponse(c, "Logged out successfully", nil)
}

// SendVerificationEmail mails the caller a verification link.
func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.authService.SendVerificationEmail(c.Request.Context(), principal); err != nil {
		respondError(c, h.logger, err)
		return
	}

	var email string
	var fullName models.FullName
	if principal.Rider != nil {
		email, fullName = principal.Rider.Email, principal.Rider.FullName
	} else if principal.User != nil {
		email, fullName = principal.User.Email, principal.User.FullName
	}
	utils.SuccessResponse(c, "Verification email sent successfully", gin.H{
		"user": gin.H{"email": email, "fullname": fullName},
	})
}

func (h *AuthHandler) VerifyEmail(userType models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request validators.VerifyEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.BadRequestResponse(c, "Invalid verification link")
			return
		}
		if errs := validators.ValidateStruct(&request); len(errs) > 0 {
			respondValidation(c, errs)
			return
		}

		if err := h.authService.VerifyEmail(c.Request.Context(), userType, request.Token); err != nil {
			respondError(c, h.logger, err)
			return
		}
		utils.SuccessResponse(c, "Email verified successfully", nil)
	}
}

// ForgotPassword serves /mail/:userType/reset-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	userType := models.UserType(c.Param("userType"))
	if !userType.IsValid() {
		utils.BadRequestResponse(c, "Invalid user type")
		return
	}

	var request validators.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), userType, request.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, "Password reset email sent successfully", nil)
}

func (h *AuthHandler) ResetPassword(userType models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request validators.ResetPasswordRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}
		if errs := validators.ValidateStruct(&request); len(errs) > 0 {
			respondValidation(c, errs)
			return
		}

		if err := h.authService.ResetPassword(c.Request.Context(), userType, request.Token, request.Password); err != nil {
			respondError(c, h.logger, err)
			return
		}
		utils.SuccessResponse(c, "Your password has been successfully reset. You can now log in with your new credentials", nil)
	}
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.TokenCookieName, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}
