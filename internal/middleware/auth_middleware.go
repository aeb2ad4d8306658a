package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"quickride/internal/models"
	"quickride/internal/services"
	"quickride/internal/utils"
)

const (
	ContextPrincipal = "principal"
	ContextUserID    = "user_id"
	ContextUserType  = "user_type"
)

// TokenFromRequest reads the session token from the cookie, the token
// header, or a bearer Authorization header, in that order.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(utils.TokenCookieName); err == nil && token != "" {
		return token
	}
	if token := c.GetHeader(utils.TokenHeaderName); token != "" {
		return token
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthRequired admits requests carrying a live token for one of the allowed
// account types. No types means any account.
func AuthRequired(auth services.AuthService, allowed ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.Authenticate(c.Request.Context(), TokenFromRequest(c), allowed...)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				utils.UnauthorizedResponse(c, services.Message(err, utils.ErrUnauthorized))
			} else {
				utils.InternalServerErrorResponse(c)
			}
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Set(ContextUserID, principal.ID)
		c.Set(ContextUserType, string(principal.Type))
		c.Next()
	}
}

func UserRequired(auth services.AuthService) gin.HandlerFunc {
	return AuthRequired(auth, models.UserTypeUser)
}

func RiderRequired(auth services.AuthService) gin.HandlerFunc {
	return AuthRequired(auth, models.UserTypeRider)
}

func GetPrincipal(c *gin.Context) (*services.Principal, bool) {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*services.Principal)
	return principal, ok
}
