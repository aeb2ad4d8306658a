package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"quickride/internal/config"
	handlers "quickride/internal/handlers/shared"
	"quickride/internal/middleware"
	"quickride/internal/services"
	"quickride/pkg/logger"
	"quickride/pkg/metrics"
	"quickride/pkg/websocket"
)

type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Auth     services.AuthService
	Cache    services.CacheService
	Rides    *handlers.RideHandler
	Accounts *handlers.AuthHandler
	Maps     *handlers.MapHandler
	Health   *handlers.HealthHandler
	Realtime *websocket.Handler
}

// NewRouter assembles the HTTP surface. The socket and operational endpoints
// sit outside the rate limiter.
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	if len(deps.Config.Security.TrustedProxies) > 0 {
		router.SetTrustedProxies(deps.Config.Security.TrustedProxies)
	}

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(deps.Config.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", deps.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if deps.Realtime != nil {
		router.GET(deps.Config.WebSocket.Path, deps.Realtime.HandleWebSocket)
	}

	api := router.Group("/")
	if deps.Cache != nil {
		api.Use(middleware.RateLimitMiddleware(deps.Cache, deps.Config.Security.RateLimitPerMinute, time.Minute, deps.Logger))
	}

	SetupUserRoutes(api, deps.Accounts, deps.Auth)
	SetupRiderRoutes(api, deps.Accounts, deps.Auth)
	SetupMailRoutes(api, deps.Accounts, deps.Auth)
	SetupRideRoutes(api, deps.Rides, deps.Auth, deps.Config.Ride.CancelRequiresAuth)
	SetupMapRoutes(api, deps.Maps, deps.Auth)

	return router
}
