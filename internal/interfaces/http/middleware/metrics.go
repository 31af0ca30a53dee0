// internal/interfaces/http/middleware/metrics.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodcart-backend/internal/pkg/metrics"
)

// Metrics records request counts and latencies by matched route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		defer done()

		start := time.Now()
		c.Next()

		metrics.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
