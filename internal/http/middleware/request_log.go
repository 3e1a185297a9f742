package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/batchcatalog-backend/internal/platform/ctxutil"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

// RequestLogger writes one line per finished request. Streams are logged at
// debug since their duration is the connection lifetime.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
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

		fields := append(requestFields(c), []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case strings.HasSuffix(route, "/stream"):
			log.Debug("HTTP stream closed", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// requestFields tags the line with trace ids and whichever catalog resource
// the route addresses.
func requestFields(c *gin.Context) []interface{} {
	var fields []interface{}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if id := c.Param("id"); id != "" {
		key := "batch_id"
		if strings.HasPrefix(c.FullPath(), "/api/sessions") {
			key = "session_id"
		}
		fields = append(fields, key, id)
	}
	return fields
}
