package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/config"
	"unigang/annex/internal/dashboard"
	"unigang/annex/internal/middleware"
	"unigang/annex/internal/service"
	"unigang/annex/internal/session"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	catalog    *catalog.Catalog
	sessions   *session.Manager
	auth       *service.AuthService
	profile    *service.ProfileService
	dashboards *dashboard.Registry
	db         *pgxpool.Pool
	cache      *redis.Client
	keepalive  time.Duration
	shutdown   <-chan struct{}
}

// NewHandlerSet wires the services. db and cache are nil when the matching backend is disabled.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, cat *catalog.Catalog, sessions *session.Manager, db *pgxpool.Pool, cache *redis.Client) HandlerSet {
	dashboards := dashboard.NewRegistry(cat, log)
	sessions.OnEvict(dashboards.Forget)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		catalog:    cat,
		sessions:   sessions,
		auth:       service.NewAuthService(sessions, cfg, log),
		profile:    service.NewProfileService(log),
		dashboards: dashboards,
		db:         db,
		cache:      cache,
		keepalive:  15 * time.Second,
	}
}

// WithShutdown returns a copy whose session streams end once done is closed.
func (h HandlerSet) WithShutdown(done <-chan struct{}) HandlerSet {
	h.shutdown = done
	return h
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.GET("/campuses", h.ListCampuses)
	router.GET("/listings", h.SearchListings)
	router.GET("/listings/recent", h.ListRecent)
	router.GET("/listings/:id", h.GetListing)

	client := router.Group("")
	client.Use(middleware.Client(h.sessions, h.log))
	{
		client.GET("/session", h.GetSession)
		client.GET("/session/events", h.SessionEvents)

		auth := client.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.SignUp)
		auth.POST("/google", h.ExchangeIdentity)
		auth.POST("/logout", h.Logout)

		client.GET("/dashboard", h.GetDashboard)
	}

	protected := client.Group("")
	protected.Use(middleware.RequireSession(h.log))
	{
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.PUT("/profile/picture", h.SetProfilePicture)
		protected.DELETE("/profile/picture", h.RemoveProfilePicture)

		dash := protected.Group("/dashboard")
		dash.GET("/ads", h.ListMyAds)
		dash.POST("/new", h.NewAd)
		dash.POST("/edit/:id", h.EditAd)
		dash.POST("/submit", h.SubmitAd)
		dash.POST("/cancel", h.CancelForm)
		dash.DELETE("/ads/:id", h.DeleteAd)
	}
}
