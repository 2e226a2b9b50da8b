package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"tourguard/config"
	"tourguard/controllers"
	"tourguard/interfaces"
	"tourguard/metrics"
	"tourguard/middleware"
	"tourguard/repositories"
	"tourguard/services"
	"tourguard/websocket"
)

const Version = "1.0.0"

// Dependencies are the infrastructure handles built in main. Redis and the
// external clients are optional; nil selects the in-process fallback or
// disables the channel.
type Dependencies struct {
	Config     *config.Config
	Logger     logrus.FieldLogger
	Metrics    *metrics.Metrics
	Store      *repositories.Store
	Redis      *redis.Client
	Hub        *websocket.Hub
	Identities interfaces.IdentityProvider

	Geocoder         interfaces.Geocoder
	RiskPredictor    interfaces.RiskPredictor
	SensorClassifier interfaces.SensorClassifier
	PushSender       interfaces.PushSender
	SMSSender        interfaces.SMSSender
}

// Services initialization
type Services struct {
	Notification *services.NotificationService
	Alert        *services.AlertService
	Geofence     *services.GeofenceService
	Location     *services.LocationService
	SafetyScore  *services.SafetyScoreService
	Sensor       *services.SensorService
}

func InitializeServices(deps *Dependencies) *Services {
	cfg := deps.Config

	sinks := []services.AlertSink{services.NewWebSocketService(deps.Hub, deps.Logger)}
	if deps.PushSender != nil {
		sinks = append(sinks, services.NewPushService(deps.PushSender, cfg.FCMAuthorityTopic))
	}
	if deps.SMSSender != nil && len(cfg.AuthorityPhoneNumbers) > 0 {
		sinks = append(sinks, services.NewSMSService(deps.SMSSender, cfg.AuthorityPhoneNumbers, cfg.SMSPerMinute))
	}
	notifier := services.NewNotificationService(sinks, cfg.NotificationTimeout, deps.Logger, deps.Metrics)

	var visits services.VisitTracker
	if deps.Redis != nil {
		visits = services.NewRedisVisitTracker(deps.Redis, cfg.VisitTTL)
	} else {
		visits = services.NewMemoryVisitTracker(cfg.VisitTTL)
	}

	alertService := services.NewAlertService(deps.Store.Alerts, notifier, deps.Logger, deps.Metrics, cfg.AlertStrictTransitions)
	geofenceService := services.NewGeofenceService(
		deps.Store.Profiles,
		alertService,
		visits,
		services.ViolationPolicy(cfg.ViolationPolicy),
		deps.Logger,
		deps.Metrics,
	)

	sensorService := services.NewSensorService(deps.SensorClassifier, alertService, cfg.ActivityAlertLabels, cfg.KeywordMinConfidence, deps.Logger)

	return &Services{
		Notification: notifier,
		Alert:        alertService,
		Geofence:     geofenceService,
		Location:     services.NewLocationService(deps.Store.Profiles, geofenceService, deps.Geocoder, deps.Logger, deps.Metrics),
		SafetyScore:  services.NewSafetyScoreService(deps.Store.Profiles, deps.RiskPredictor, deps.Logger),
		Sensor:       sensorService,
	}
}

// Controllers initialization
type Controllers struct {
	Alert     *controllers.AlertController
	Location  *controllers.LocationController
	Geofence  *controllers.GeofenceController
	Sensor    *controllers.SensorController
	WebSocket *controllers.WebSocketController
	Health    *controllers.HealthController
}

func initializeControllers(deps *Dependencies, svcs *Services) *Controllers {
	checks := map[string]controllers.HealthCheck{
		"store": deps.Store.Ping,
		"redis": nil,
	}
	if deps.Redis != nil {
		client := deps.Redis
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	return &Controllers{
		Alert:     controllers.NewAlertController(svcs.Alert),
		Location:  controllers.NewLocationController(svcs.Location),
		Geofence:  controllers.NewGeofenceController(svcs.Geofence, svcs.SafetyScore),
		Sensor:    controllers.NewSensorController(svcs.Sensor),
		WebSocket: controllers.NewWebSocketController(deps.Hub, deps.Logger),
		Health:    controllers.NewHealthController(checks, Version),
	}
}

// SetupRoutes builds the HTTP router
func SetupRoutes(deps *Dependencies, svcs *Services) *gin.Engine {
	router := gin.New()

	ctrls := initializeControllers(deps, svcs)
	auth := middleware.NewAuthMiddleware(deps.Identities, deps.Logger)

	var limitStore middleware.LimitStore
	if deps.Redis != nil {
		limitStore = middleware.NewRedisLimitStore(deps.Redis)
	} else {
		limitStore = middleware.NewMemoryLimitStore()
	}
	newLimiter := func(prefix string) gin.HandlerFunc {
		return middleware.NewRateLimiter(middleware.RateLimitConfig{
			Requests:  deps.Config.RateLimitRequests,
			Window:    deps.Config.RateLimitWindow,
			KeyPrefix: prefix,
		}, middleware.StrategyUserOrIP, limitStore, deps.Logger).Middleware()
	}

	setupGlobalMiddleware(router, deps)
	setupPublicRoutes(router, deps, ctrls)

	api := router.Group("/api/v1")
	api.Use(auth.RequireAuth())
	SetupAlertRoutes(api, ctrls.Alert)
	SetupLocationRoutes(api, ctrls.Location, newLimiter("location"))
	SetupGeofenceRoutes(api, ctrls.Geofence)
	SetupSensorRoutes(api, ctrls.Sensor, newLimiter("sensors"))

	SetupWebSocketRoutes(router, api, ctrls.WebSocket, auth)

	return router
}

// Global middleware setup
func setupGlobalMiddleware(router *gin.Engine, deps *Dependencies) {
	router.Use(middleware.LoggerMiddleware(middleware.DefaultLoggerConfig(deps.Logger)))
	router.Use(middleware.NewErrorHandler(deps.Config.Environment, deps.Logger).Handle())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(deps.Config.CORSAllowedOrigins)))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
}

// Public routes (no authentication required)
func setupPublicRoutes(router *gin.Engine, deps *Dependencies, ctrls *Controllers) {
	router.GET("/health", ctrls.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
}
