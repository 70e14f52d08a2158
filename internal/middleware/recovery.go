package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery answers a panicking handler with a 500. http.ErrAbortHandler is
// re-raised so net/http drops the connection quietly.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			event := LoggerFrom(c, log).Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("path", c.Request.URL.Path)
			if sc := SessionFrom(c); sc != nil {
				event = event.Str("client", sc.Client())
			}
			event.Msg("panic recovered")

			// a stream that already sent its headers cannot switch to a JSON error
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}()
		c.Next()
	}
}
