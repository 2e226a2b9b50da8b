package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"

	"tourguard/models"
)

// Context keys set by the auth middleware
const (
	ContextKeyIdentity  = "identity"
	ContextKeyUserID    = "userID"
	ContextKeyUserRole  = "userRole"
	ContextKeyRequestID = "request_id"
)

// GetIdentity returns the authenticated caller stored on the Gin context.
func GetIdentity(c *gin.Context) (models.UserIdentity, bool) {
	if value, exists := c.Get(ContextKeyIdentity); exists {
		if identity, ok := value.(models.UserIdentity); ok {
			return identity, true
		}
	}
	return models.UserIdentity{}, false
}

// GetUserID retrieves the user ID from the Gin context
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// Pagination Utilities
func CalculateOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func CalculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// Number Utilities
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func FormatDuration(duration time.Duration) string {
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
