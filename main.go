package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"tourguard/config"
	"tourguard/database"
	"tourguard/metrics"
	"tourguard/repositories"
	"tourguard/routes"
	"tourguard/utils"
	"tourguard/websocket"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := setupLogger(cfg)
	if envErr != nil {
		logger.Debug("No .env file found")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage
	store, closeStore := setupStore(cfg, logger)
	defer closeStore()

	// Initialize Redis
	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure Redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("Redis is not reachable; visit tracking and rate limiting fail open")
		}
	} else {
		logger.Info("REDIS_URL not set; using in-process visit tracking and rate limiting")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	deps := &routes.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics.New(registry),
		Store:      store,
		Redis:      redisClient,
		Hub:        hub,
		Identities: utils.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer),
	}
	setupExternalClients(cfg, deps, logger)

	svcs := routes.InitializeServices(deps)
	router := routes.SetupRoutes(deps, svcs)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":         cfg.Port,
			"store_driver": cfg.StoreDriver,
			"policy":       cfg.ViolationPolicy,
		}).Info("Tourist safety server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	// Let queued alert notifications finish before the feed goes away.
	svcs.Notification.Wait()
	hub.Shutdown()

	logger.Info("Server shutdown complete")
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func setupStore(cfg *config.Config, logger *logrus.Logger) (*repositories.Store, func()) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; records are lost on restart")
		return repositories.NewMemoryStore(), func() {}
	}

	conn, err := database.Connect(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	return repositories.NewMongoStore(conn, logger), func() {
		_ = conn.Disconnect(context.Background())
	}
}

// setupExternalClients enables each optional channel whose credentials are
// configured. Interface fields stay nil otherwise.
func setupExternalClients(cfg *config.Config, deps *routes.Dependencies, logger *logrus.Logger) {
	if cfg.FirebaseCredentials != "" {
		fcm, err := utils.NewFCMClient(context.Background(), cfg.FirebaseCredentials)
		if err != nil {
			logger.WithError(err).Error("Push notifications disabled")
		} else {
			deps.PushSender = fcm
		}
	}

	if cfg.SMSEnabled() {
		deps.SMSSender = utils.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	}

	if cfg.GoogleMapsAPIKey != "" {
		geocoder, err := utils.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
		if err != nil {
			logger.WithError(err).Error("Reverse geocoding disabled")
		} else {
			deps.Geocoder = geocoder
		}
	}

	if cfg.RiskServiceURL != "" {
		ai := utils.NewAIClient(cfg.RiskServiceURL, cfg.RiskTimeout)
		deps.RiskPredictor = ai
		deps.SensorClassifier = ai
	}

	logger.WithFields(logrus.Fields{
		"push":      deps.PushSender != nil,
		"sms":       deps.SMSSender != nil,
		"geocoding": deps.Geocoder != nil,
		"risk":      deps.RiskPredictor != nil,
		"sensors":   deps.SensorClassifier != nil,
	}).Info("External channels configured")
}
