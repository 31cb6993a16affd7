package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	cloudEventIDHeader      = "Ce-Id"
	cloudEventTypeHeader    = "Ce-Type"
	cloudEventSubjectHeader = "Ce-Subject"
)

// requestLogger attaches a logger tagged with the invocation id to the request context.
// The CloudEvent id is used when present so retries of one event share an id.
func requestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		invocationID := ctx.GetHeader(cloudEventIDHeader)
		if invocationID == "" {
			invocationID = uuid.NewString()
		}

		builder := base.With().Str("invocationId", invocationID)
		if eventType := ctx.GetHeader(cloudEventTypeHeader); eventType != "" {
			builder = builder.Str("eventType", eventType)
		}
		logger := builder.Logger()

		ctx.Request = ctx.Request.WithContext(logger.WithContext(ctx.Request.Context()))

		start := time.Now()
		ctx.Next()

		logger.Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

// recoverer logs panics through the request logger instead of gin's stderr writer
// and aborts with the given status.
func recoverer(status int) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, err any) {
		zerolog.Ctx(ctx.Request.Context()).Error().
			Interface("panic", err).
			Str("path", ctx.FullPath()).
			Msg("recovered from panic")
		ctx.AbortWithStatus(status)
	})
}
