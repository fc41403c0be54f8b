package ginutil

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "coffeeshop.logger"
)

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		entry := log.WithFields(logrus.Fields{"request_id": rid, "method": c.Request.Method, "path": c.FullPath()})
		c.Set(loggerKey, entry)

		c.Next()

		fields := logrus.Fields{"status": c.Writer.Status(), "latency_ms": time.Since(start).Milliseconds()}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.WithFields(fields).Warn("request completed")
			return
		}
		entry.WithFields(fields).Info("request completed")
	}
}

// Logger returns the request-scoped logger, or the standard logger outside RequestLogger.
func Logger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

// Recovery turns a panic into the generic 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Logger(c).WithField("panic", recovered).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": http.StatusInternalServerError, "message": "internal server error"})
	})
}
