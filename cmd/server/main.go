package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quickride/internal/config"
	handlers "quickride/internal/handlers/shared"
	"quickride/internal/repositories/mongodb"
	"quickride/internal/services"
	"quickride/pkg/cache"
	"quickride/pkg/database"
	"quickride/pkg/events"
	"quickride/pkg/logger"
	"quickride/pkg/mailer"
	"quickride/pkg/maps"
	"quickride/pkg/metrics"
	"quickride/pkg/websocket"
	"quickride/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongo.Close()

	if err := database.NewMigrator(mongo.Database, appLogger).Up(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		URL:          cfg.Redis.URL,
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	googleMaps, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey, cfg.Maps.RequestTimeout)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create maps client")
	}
	mapsProvider := maps.WithObserver(googleMaps, metrics.ObserveMapsCall)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.RideTopic, cfg.Kafka.WriteTimeout)
		appLogger.WithField("topic", cfg.Kafka.RideTopic).Info("Publishing ride events to Kafka")
	}
	defer publisher.Close()

	var accountMail mailer.Mailer = mailer.NewLogMailer(appLogger)
	if cfg.SMTP.Enabled() {
		accountMail = mailer.NewSMTPMailer(&mailer.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.FromEmail,
			FromName:  cfg.SMTP.FromName,
		})
	}

	hub := websocket.NewHub(websocket.Options{
		ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		PingInterval:     cfg.WebSocket.PingInterval,
		PongTimeout:      cfg.WebSocket.PongTimeout,
		MaxMessageSize:   cfg.WebSocket.MaxMessageSize,
		SendBufferSize:   cfg.WebSocket.SendBufferSize,
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
	}, appLogger)
	go hub.Run(ctx)

	// Repositories
	userRepo := mongodb.NewUserRepository(mongo.Database)
	riderRepo := mongodb.NewRiderRepository(mongo.Database)
	rideRepo := mongodb.NewRideRepository(mongo.Database)
	logRepo := mongodb.NewFrontendLogRepository(mongo.Database)

	// Services
	authService := services.NewAuthService(userRepo, riderRepo, redisCache, accountMail, cfg.SMTP.ClientURL, cfg.Security, appLogger)
	fareService := services.NewFareService(mapsProvider, appLogger)
	rideService := services.NewRideService(rideRepo, riderRepo, userRepo, fareService, mapsProvider, hub, publisher, cfg.Ride, appLogger)
	realtimeService := services.NewRealtimeService(userRepo, riderRepo, logRepo, rideService, hub, cfg.Ride,
		services.RealtimeOptions{LogIngest: cfg.App.IsProduction()}, appLogger)

	router := routes.NewRouter(&routes.Dependencies{
		Config:   cfg,
		Logger:   appLogger,
		Auth:     authService,
		Cache:    redisCache,
		Rides:    handlers.NewRideHandler(rideService, appLogger),
		Accounts: handlers.NewAuthHandler(authService, cfg.Security.JWTAccessTokenTTL, cfg.App.IsProduction(), appLogger),
		Maps:     handlers.NewMapHandler(mapsProvider, appLogger),
		Health: handlers.NewHealthHandler(cfg.App.Version, map[string]handlers.Pinger{
			"mongodb": mongo,
			"redis":   redisCache,
		}, hub.ConnectionCount),
		Realtime: websocket.NewHandler(ctx, hub, realtimeService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting %s on %s", cfg.App.Name, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
