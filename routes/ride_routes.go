package routes

import (
	"github.com/gin-gonic/gin"

	handlers "quickride/internal/handlers/shared"
	"quickride/internal/middleware"
	"quickride/internal/services"
)

// SetupRideRoutes sets up the ride lifecycle endpoints
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, auth services.AuthService, cancelRequiresAuth bool) {
	rides := r.Group("/ride")

	// Requester operations
	rides.POST("/create", middleware.UserRequired(auth), rideHandler.CreateRide)
	rides.GET("/get-fare", middleware.UserRequired(auth), rideHandler.GetFare)

	// Rider operations
	rides.POST("/confirm", middleware.RiderRequired(auth), rideHandler.ConfirmRide)
	rides.GET("/start-ride", middleware.RiderRequired(auth), rideHandler.StartRide)
	rides.POST("/end-ride", middleware.RiderRequired(auth), rideHandler.EndRide)

	if cancelRequiresAuth {
		rides.GET("/cancel", middleware.AuthRequired(auth), rideHandler.CancelRide)
	} else {
		rides.GET("/cancel", rideHandler.CancelRide)
	}

	rides.GET("/share-details/:id", rideHandler.GetShareDetails)
	rides.GET("/chat-details/:id", middleware.AuthRequired(auth), rideHandler.GetChatDetails)
}
