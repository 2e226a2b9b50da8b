package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tourguard/metrics"
)

// MetricsMiddleware records request counts and latency by route template,
// so path parameters do not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	})
}
