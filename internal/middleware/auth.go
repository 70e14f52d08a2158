package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"unigang/annex/internal/session"
)

const sessionStateKey = "session_state"

// RequireSession rejects callers whose session carries no token. It must run after Client.
func RequireSession(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := SessionFrom(c)
		if sc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		state, err := sc.State(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Str("client", sc.Client()).Msg("load session")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session_unavailable"})
			return
		}
		if !state.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login_required"})
			return
		}

		c.Set(sessionStateKey, state)
		c.Next()
	}
}

// StateFrom returns the state loaded by RequireSession.
func StateFrom(c *gin.Context) (session.State, bool) {
	v, ok := c.Get(sessionStateKey)
	if !ok {
		return session.State{}, false
	}
	state, ok := v.(session.State)
	return state, ok
}
