package logger

import (
	"net/http"
	"strings"
	"time"

	obscontext "github.com/IAmRubenNavarro/doula-life/internal/observability/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware emits one structured line per request, keyed by a request id
// that is minted here when the client did not send one.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := ensureRequestID(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := strings.TrimSpace(c.FullPath())
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if provider := strings.TrimSpace(c.Param("provider")); provider != "" {
			fields = append(fields, zap.String("provider", provider))
		}

		if last := c.Errors.Last(); last != nil {
			var errorType, errorCode string
			if cfg.ErrorClassifier != nil {
				errorType, errorCode = cfg.ErrorClassifier(last.Err)
			}
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if cfg.Debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		log := FromContext(c.Request.Context())
		if log == nil {
			return
		}
		switch requestLevel(route, status) {
		case zapcore.DebugLevel:
			log.Debug("http_request", fields...)
		case zapcore.ErrorLevel:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

// ensureRequestID finds or mints the correlation id for this request and
// mirrors it back on the response.
func ensureRequestID(c *gin.Context) string {
	var requestID string
	for _, candidate := range []string{
		c.GetHeader("X-Request-Id"),
		c.GetHeader("X-Request-ID"),
		c.GetString("request_id"),
	} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			requestID = candidate
			break
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Set("request_id", requestID)
	c.Header("X-Request-Id", requestID)
	return requestID
}

// requestLevel picks the log level for a finished request. Server faults log
// as errors; scrape traffic and unsigned probes against the public webhook
// endpoint are routine internet noise and stay at debug.
func requestLevel(route string, status int) zapcore.Level {
	switch {
	case strings.EqualFold(route, "/metrics"):
		return zapcore.DebugLevel
	case strings.HasPrefix(route, "/webhooks/") && status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}
