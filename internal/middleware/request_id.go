package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader = "X-Request-Id"

	requestIDKey     = "request_id"
	requestLoggerKey = "request_logger"
)

// RequestID tags the request with a uuid, keeping a well-formed incoming one,
// and attaches a logger that carries it.
func RequestID(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		l := log.With().Str(requestIDKey, id).Logger()
		c.Set(requestLoggerKey, &l)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// LoggerFrom returns the request's logger, or fallback outside RequestID.
func LoggerFrom(c *gin.Context, fallback zerolog.Logger) *zerolog.Logger {
	if v, ok := c.Get(requestLoggerKey); ok {
		if l, ok := v.(*zerolog.Logger); ok {
			return l
		}
	}
	return &fallback
}
