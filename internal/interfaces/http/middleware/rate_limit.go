// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit implements a fixed one-minute window per client IP using Redis.
// When Redis is unavailable requests are let through.
func RateLimit(limitPerMinute int, redisClient *redis.Client, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limitPerMinute <= 0 {
			c.Next()
			return
		}

		window := time.Now().UTC().Truncate(time.Minute)
		key := fmt.Sprintf("rate_limit:%s:%d", c.ClientIP(), window.Unix())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		current := int(incr.Val())
		reset := window.Add(time.Minute)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, limitPerMinute-current)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if current > limitPerMinute {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(time.Until(reset).Seconds()) + 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
