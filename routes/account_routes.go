package routes

import (
	"github.com/gin-gonic/gin"

	handlers "quickride/internal/handlers/shared"
	"quickride/internal/middleware"
	"quickride/internal/models"
	"quickride/internal/services"
)

func SetupUserRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth services.AuthService) {
	users := r.Group("/user")
	users.POST("/register", authHandler.RegisterUser)
	users.POST("/login", authHandler.Login(models.UserTypeUser))
	users.POST("/verify-email", authHandler.VerifyEmail(models.UserTypeUser))
	users.POST("/reset-password", authHandler.ResetPassword(models.UserTypeUser))

	protected := users.Group("")
	protected.Use(middleware.UserRequired(auth))
	{
		protected.GET("/profile", authHandler.Profile)
		protected.POST("/update", authHandler.UpdateUser)
		protected.GET("/logout", authHandler.Logout)
	}
}

func SetupRiderRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth services.AuthService) {
	riders := r.Group("/rider")
	riders.POST("/register", authHandler.RegisterRider)
	riders.POST("/login", authHandler.Login(models.UserTypeRider))
	riders.POST("/verify-email", authHandler.VerifyEmail(models.UserTypeRider))
	riders.POST("/reset-password", authHandler.ResetPassword(models.UserTypeRider))

	protected := riders.Group("")
	protected.Use(middleware.RiderRequired(auth))
	{
		protected.GET("/profile", authHandler.Profile)
		protected.POST("/update", authHandler.UpdateRider)
		protected.GET("/logout", authHandler.Logout)
	}
}

// SetupMailRoutes sets up the endpoints that send account mail.
func SetupMailRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth services.AuthService) {
	mail := r.Group("/mail")
	mail.GET("/verify-user-email", middleware.UserRequired(auth), authHandler.SendVerificationEmail)
	mail.GET("/verify-rider-email", middleware.RiderRequired(auth), authHandler.SendVerificationEmail)
	mail.POST("/:userType/reset-password", authHandler.ForgotPassword)
}

func SetupMapRoutes(r *gin.RouterGroup, mapHandler *handlers.MapHandler, auth services.AuthService) {
	maps := r.Group("/map")
	maps.Use(middleware.AuthRequired(auth))
	{
		maps.GET("/get-coordinates", mapHandler.GetCoordinates)
		maps.GET("/get-distance-time", mapHandler.GetDistanceTime)
		maps.GET("/get-suggestions", mapHandler.GetSuggestions)
	}
}
