package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ceritaku/server/utils"
)

// RequestLogger emits a structured access log entry per request: method,
// path, status, latency and client IP.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		if utils.Logger == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", ctx.ClientIP()),
		}
		if len(ctx.Errors) > 0 {
			utils.Logger.Warn("request completed with errors", append(fields, zap.String("errors", ctx.Errors.String()))...)
			return
		}
		utils.Logger.Info("request completed", fields...)
	}
}
