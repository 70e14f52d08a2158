package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unigang/annex/internal/ids"
	"unigang/annex/internal/session"
)

func newEngine(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDKeepsValidHeader(t *testing.T) {
	r := newEngine(t, RequestID(zerolog.Nop()))
	var seen string
	r.GET("/", func(c *gin.Context) { seen = RequestIDFrom(c) })

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", id)
	rec := serve(r, req)

	assert.Equal(t, id, seen)
	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	rec = serve(r, req)
	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", seen)
}

func TestLoggerFromCarriesRequestID(t *testing.T) {
	var requestLog, fallbackLog bytes.Buffer
	fallback := zerolog.New(&fallbackLog)

	r := newEngine(t, RequestID(zerolog.New(&requestLog)))
	r.GET("/", func(c *gin.Context) { LoggerFrom(c, fallback).Info().Msg("inside") })
	bare := newEngine(t)
	bare.GET("/", func(c *gin.Context) { LoggerFrom(c, fallback).Warn().Msg("outside") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, requestLog.String(), `"request_id":"`+rec.Header().Get(RequestIDHeader)+`"`)
	assert.Contains(t, requestLog.String(), "inside")

	serve(bare, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, fallbackLog.String(), "outside")
	assert.NotContains(t, fallbackLog.String(), "request_id")
}

func TestClientResolvesIDs(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), session.NewMemoryFeed(), zerolog.Nop())
	t.Cleanup(manager.Close)

	r := newEngine(t, Client(manager, zerolog.Nop()))
	var sc *session.Context
	r.GET("/", func(c *gin.Context) { sc = SessionFrom(c) })

	client, tab := ids.New(), ids.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ClientIDHeader, client)
	req.Header.Set(TabIDHeader, tab)
	rec := serve(r, req)
	require.NotNil(t, sc)
	assert.Equal(t, client, sc.Client())
	assert.Equal(t, tab, sc.Tab())
	assert.False(t, sc.Transient())
	assert.Equal(t, client, rec.Header().Get(ClientIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/?clientId="+client+"&tabId="+tab, nil)
	serve(r, req)
	assert.Equal(t, client, sc.Client())
	assert.Equal(t, tab, sc.Tab())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ClientIDHeader, "bogus")
	rec = serve(r, req)
	assert.NotEqual(t, "bogus", sc.Client())
	assert.True(t, sc.Transient())
	assert.True(t, ids.Valid(rec.Header().Get(ClientIDHeader)))
	assert.True(t, ids.Valid(rec.Header().Get(TabIDHeader)))
	assert.Equal(t, 1, manager.Len(), "minted tabs are not tracked")
}

func TestRequireSession(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), session.NewMemoryFeed(), zerolog.Nop())
	t.Cleanup(manager.Close)

	r := newEngine(t, Client(manager, zerolog.Nop()), RequireSession(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) {
		state, ok := StateFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, state.Name)
	})

	client := ids.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ClientIDHeader, client)
	rec := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"login_required"}`, rec.Body.String())

	require.NoError(t, manager.Store().Set(context.Background(), client, map[string]string{
		session.KeyToken: "token",
		session.KeyName:  "Nimal",
	}))
	rec = serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nimal", rec.Body.String())
}

func TestRequireSessionWithoutClient(t *testing.T) {
	r := newEngine(t, RequireSession(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(t, CORS([]string{" https://annex.example/ "}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://annex.example")
	rec := serve(r, req)
	assert.Equal(t, "https://annex.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), TabIDHeader)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://annex.example")
	rec = serve(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), ClientIDHeader)
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRecoveryAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := newEngine(t, RequestID(logger), Logger(logger), Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_server_error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"request_id":"`+rec.Header().Get(RequestIDHeader)+`"`)
	assert.Contains(t, buf.String(), `"route":"/boom"`)
}
