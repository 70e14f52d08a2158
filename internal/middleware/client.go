package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"unigang/annex/internal/ids"
	"unigang/annex/internal/session"
)

const (
	ClientIDHeader = "X-Client-Id"
	TabIDHeader    = "X-Tab-Id"

	sessionContextKey = "session_context"
)

// Client resolves the storage namespace and tab of the caller and opens their
// session context. Missing or malformed ids are replaced by fresh ones and
// echoed back so the caller can persist them. A minted tab id only lives for
// the request; the manager tracks tabs the caller identified.
func Client(manager *session.Manager, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, _ := resolveID(c, ClientIDHeader)
		tab, known := resolveID(c, TabIDHeader)

		if !known {
			c.Set(sessionContextKey, manager.Transient(client, tab))
			c.Next()
			return
		}

		sc, err := manager.Open(c.Request.Context(), client, tab)
		if err != nil {
			log.Error().Err(err).Str("client", client).Msg("open session")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session_unavailable"})
			return
		}

		c.Set(sessionContextKey, sc)
		c.Next()
	}
}

// resolveID returns the caller's id, or a fresh one with presented false.
func resolveID(c *gin.Context, header string) (id string, presented bool) {
	id = c.GetHeader(header)
	if !ids.Valid(id) {
		id = c.Query(queryName(header))
	}
	presented = ids.Valid(id)
	if !presented {
		id = ids.New()
	}
	c.Writer.Header().Set(header, id)
	return id, presented
}

// EventSource cannot set headers, so the SSE endpoint passes ids as query parameters.
func queryName(header string) string {
	if header == ClientIDHeader {
		return "clientId"
	}
	return "tabId"
}

// SessionFrom returns the context opened by Client.
func SessionFrom(c *gin.Context) *session.Context {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sc, _ := v.(*session.Context)
	return sc
}
