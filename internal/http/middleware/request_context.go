package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// RequestIDs tags every request with a request id and a trace id. Incoming
// headers win; the trace id otherwise comes from the active span.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: strings.TrimSpace(c.GetHeader(headerRequestID)),
			TraceID:   strings.TrimSpace(c.GetHeader(headerTraceID)),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if td.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				td.TraceID = sc.TraceID().String()
			} else {
				td.TraceID = td.RequestID
			}
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(headerTraceID, td.TraceID)
		c.Writer.Header().Set(headerRequestID, td.RequestID)
		c.Next()
	}
}

// AccessLog writes one line per request. Successful hits on quiet routes
// (probes, metrics, the event stream) log at debug level.
func AccessLog(log *logger.Logger, quietRoutes ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietRoutes))
	for _, r := range quietRoutes {
		quiet[r] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, "resource_id", id)
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if userID := ctxutil.UserID(c.Request.Context()); userID != uuid.Nil {
			fields = append(fields, "user_id", userID.String())
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quiet[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
