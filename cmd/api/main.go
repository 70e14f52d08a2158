package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unigang/annex/internal/cache"
	"unigang/annex/internal/catalog"
	"unigang/annex/internal/config"
	"unigang/annex/internal/database"
	"unigang/annex/internal/handlers"
	"unigang/annex/internal/jobs"
	"unigang/annex/internal/log"
	"unigang/annex/internal/repository"
	"unigang/annex/internal/server"
	"unigang/annex/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	var (
		dbPool       *pgxpool.Pool
		listingStore catalog.Store = catalog.NewMemoryStore()
	)
	if cfg.Postgres.DSN != "" {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		listingStore = repository.NewListingRepository(dbPool)
	}

	var (
		redisClient  *redis.Client
		sessionStore session.Store = session.NewMemoryStore()
		sessionFeed  session.Feed  = session.NewMemoryFeed()
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		sessionStore = session.NewRedisStore(redisClient, cfg.Redis.Prefix)
		sessionFeed = session.NewRedisFeed(redisClient, cfg.Redis.Prefix, logger)
	}

	cat := catalog.New(listingStore, catalog.Seed(), cfg.Catalog.PageSize, logger)
	if cfg.Catalog.Seed && dbPool != nil {
		logger.Warn().Msg("catalog.seed is set: stored listings are replaced by the demo seed")
	}
	if _, err := cat.EnsureSeeded(ctx, cfg.Catalog.Seed); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed catalog")
	}

	sessions := session.NewManager(sessionStore, sessionFeed, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, cat, sessions, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Redis.Prefix, logger)
	if err := scheduler.ScheduleSweep(sessions, cfg.Session.SweepInterval, cfg.Session.IdleTimeout); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule session sweep")
	}
	if cfg.Demo.ResetEnabled {
		if err := scheduler.ScheduleReset(cat, cfg.Demo.ResetSchedule); err != nil {
			logger.Error().Err(err).Msg("demo reset not scheduled")
		}
	}
	scheduler.Start()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, sessions, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, sessions *session.Manager, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	wait := scheduler.Stop()
	wait()

	sessions.Close()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
