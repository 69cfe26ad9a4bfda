package middleware

import (
	"time"

	"todoapi/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logging writes one structured line per request.
func Logging(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := logger.WithRequestID(log, GetRequestID(c))
		entry.Debugf("request started: %s %s", c.Request.Method, c.Request.URL.Path)

		c.Next()

		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			entry.WithFields(fields).WithError(c.Errors.Last()).Error("request failed")
			return
		}
		entry.WithFields(fields).Info("request completed")
	}
}
