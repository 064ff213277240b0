package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
)

// RequestLogger writes one access line per request once handlers have run.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if uid := ctxutil.UserID(ctx); uid != 0 {
			fields = append(fields, "user_id", uid)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch statusLevel(status, c.Request.URL.Path) {
		case "error":
			log.Error("request", fields...)
		case "warn":
			log.Warn("request", fields...)
		case "debug":
			log.Debug("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// statusLevel keeps healthcheck hits out of info logs.
func statusLevel(status int, path string) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	case path == "/healthcheck":
		return "debug"
	default:
		return "info"
	}
}
