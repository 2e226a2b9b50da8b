package middleware

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tourguard/utils"
)

const HeaderRequestID = "X-Request-ID"

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Logger         logrus.FieldLogger
	SkipPaths      []string
	SkipUserAgents []string
	SlowThreshold  time.Duration
}

// DefaultLoggerConfig skips health checks and the scrape endpoint.
func DefaultLoggerConfig(logger logrus.FieldLogger) LoggerConfig {
	return LoggerConfig{
		Logger: logger,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/favicon.ico",
		},
		SkipUserAgents: []string{
			"kube-probe",
			"GoogleHC",
		},
		SlowThreshold: 5 * time.Second,
	}
}

// LoggerMiddleware assigns a request id and logs every request at a level
// derived from its status code.
func LoggerMiddleware(config LoggerConfig) gin.HandlerFunc {
	if config.SlowThreshold == 0 {
		config.SlowThreshold = 5 * time.Second
	}

	return gin.HandlerFunc(func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(utils.ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		if shouldSkipPath(c.Request.URL.Path, config.SkipPaths) ||
			shouldSkipUserAgent(c.GetHeader("User-Agent"), config.SkipUserAgents) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := logrus.Fields{
			"request_id":    requestID,
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"query":         redactQuery(c.Request.URL.RawQuery),
			"status":        c.Writer.Status(),
			"latency_ms":    float64(duration.Nanoseconds()) / 1e6,
			"ip":            c.ClientIP(),
			"user_agent":    c.GetHeader("User-Agent"),
			"response_size": c.Writer.Size(),
		}
		if userID := utils.GetUserID(c); userID != "" {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.Errors()
		}

		logRequest(config.Logger.WithFields(fields), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration, config.SlowThreshold)
	})
}

// sensitiveQueryParams never reach the log in clear text.
var sensitiveQueryParams = []string{QueryTokenParam, "access_token"}

func redactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "[unparseable]"
	}
	for _, key := range sensitiveQueryParams {
		if _, ok := values[key]; ok {
			values.Set(key, "[REDACTED]")
		}
	}
	return values.Encode()
}

func logRequest(entry logrus.FieldLogger, method, path string, statusCode int, duration, slow time.Duration) {
	message := fmt.Sprintf("%s %s %d %s", method, path, statusCode, duration)

	switch {
	case statusCode >= 500:
		entry.Error(message)
	case statusCode >= 400:
		entry.Warn(message)
	case duration > slow:
		entry.Warn(message + " (slow request)")
	default:
		entry.Info(message)
	}
}

func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func shouldSkipUserAgent(userAgent string, skipUserAgents []string) bool {
	if userAgent == "" {
		return false
	}
	for _, skipUA := range skipUserAgents {
		if strings.Contains(userAgent, skipUA) {
			return true
		}
	}
	return false
}
