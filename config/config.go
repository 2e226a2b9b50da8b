package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

type Config struct {
	Environment string
	Port        string
	StoreDriver string
	DatabaseURL string
	RedisURL    string // empty disables Redis; in-process fallbacks are used
	JWTSecret   string
	JWTIssuer   string

	// Firebase Config
	FirebaseCredentials string
	FCMAuthorityTopic   string

	// Twilio Config
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioPhoneNumber     string
	AuthorityPhoneNumbers []string
	SMSPerMinute          int

	// External services
	GoogleMapsAPIKey string
	RiskServiceURL   string
	RiskTimeout      time.Duration

	// Sensor classification
	ActivityAlertLabels  []string
	KeywordMinConfidence float64

	// Safety settings
	ViolationPolicy        string
	VisitTTL               time.Duration
	AlertStrictTransitions bool
	NotificationTimeout    time.Duration

	// HTTP settings
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverMongo),
		DatabaseURL: getEnv("DATABASE_URL", "mongodb://localhost:27017/tourguard"),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		JWTIssuer:   getEnv("JWT_ISSUER", "tourguard"),

		// Firebase
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FCMAuthorityTopic:   getEnv("FCM_AUTHORITY_TOPIC", "authority-alerts"),

		// Twilio
		TwilioAccountSID:      getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:     getEnv("TWILIO_PHONE_NUMBER", ""),
		AuthorityPhoneNumbers: getEnvAsSlice("AUTHORITY_PHONE_NUMBERS", nil),
		SMSPerMinute:          getEnvAsInt("SMS_PER_MINUTE", 30),

		// External services
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		RiskServiceURL:   getEnv("RISK_SERVICE_URL", ""),
		RiskTimeout:      getEnvAsDuration("RISK_TIMEOUT", 3*time.Second),

		// Sensor classification
		ActivityAlertLabels:  getEnvAsSlice("ACTIVITY_ALERT_LABELS", []string{"fall"}),
		KeywordMinConfidence: getEnvAsFloat("KEYWORD_MIN_CONFIDENCE", 0.8),

		// Safety settings
		ViolationPolicy:        getEnv("VIOLATION_POLICY", "per_visit"),
		VisitTTL:               getEnvAsDuration("VISIT_TTL", 6*time.Hour),
		AlertStrictTransitions: getEnvAsBool("ALERT_STRICT_TRANSITIONS", true),
		NotificationTimeout:    getEnvAsDuration("NOTIFICATION_TIMEOUT", 10*time.Second),

		// HTTP settings
		RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:    time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	if c.KeywordMinConfidence < 0 || c.KeywordMinConfidence > 1 {
		return fmt.Errorf("KEYWORD_MIN_CONFIDENCE must be between 0 and 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SMSEnabled reports whether Twilio credentials and at least one recipient
// are configured.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioPhoneNumber != "" && len(c.AuthorityPhoneNumbers) > 0
}

// InitRedis returns nil when no REDIS_URL is configured.
func InitRedis(cfg *Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	return redis.NewClient(opt), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsSlice splits a comma separated value, dropping blank entries.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
