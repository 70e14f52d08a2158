package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"unigang/annex/internal/middleware"
	"unigang/annex/internal/session"
)

func (h HandlerSet) GetSession(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	state, err := sc.State(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(state))
}

// SessionEvents streams the tab's session state as server-sent events: the
// current state first, then one event per change seen by the tab, including
// changes made in the client's other tabs. The stream ends when the client
// goes away or the server starts shutting down.
func (h HandlerSet) SessionEvents(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	ctx := c.Request.Context()

	updates := make(chan session.State, 16)
	stop, err := sc.Watch(ctx, func(s session.State) {
		select {
		case updates <- s:
		default:
			h.log.Warn().Str("client", sc.Client()).Str("tab", sc.Tab()).Msg("session stream lagging, update dropped")
		}
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer stop()

	state, err := sc.State(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// the stream outlives the server write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("session", h.sessionResponse(state))
	c.Writer.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-h.shutdown:
			return false
		case s := <-updates:
			c.SSEvent("session", h.sessionResponse(s))
			return true
		case <-keepalive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
