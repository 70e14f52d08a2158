package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"unigang/annex/internal/cache"
)

// Resetter restores the demo catalog.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Sweeper drops session tabs idle for longer than idle.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

type Scheduler struct {
	cron    *cron.Cron
	catalog Resetter
	lock    *redis.Client
	prefix  string
	log     zerolog.Logger
}

// NewScheduler builds an empty scheduler. lock may be nil; when set, a Redis
// key makes sure only one process resets the catalog per run.
func NewScheduler(lock *redis.Client, prefix string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		lock:   lock,
		prefix: prefix,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// ScheduleReset restores catalog on schedule, a six-field cron expression.
func (s *Scheduler) ScheduleReset(catalog Resetter, schedule string) error {
	s.catalog = catalog
	if _, err := s.cron.AddFunc(schedule, s.resetCatalog); err != nil {
		return fmt.Errorf("schedule catalog reset: %w", err)
	}
	s.log.Info().Str("schedule", schedule).Msg("demo reset scheduled")
	return nil
}

// ScheduleSweep evicts idle session tabs every interval. Tabs live in process
// memory, so every process sweeps its own without the lock.
func (s *Scheduler) ScheduleSweep(sessions Sweeper, every, idle time.Duration) error {
	if every <= 0 || idle <= 0 {
		return fmt.Errorf("schedule session sweep: interval %s and idle timeout %s must be positive", every, idle)
	}
	_, err := s.cron.AddFunc("@every "+every.String(), func() {
		if n := sessions.Sweep(idle); n > 0 {
			s.log.Info().Int("tabs", n).Msg("session tabs swept")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler; the returned function waits (at most 5s) for a running job.
func (s *Scheduler) Stop() func() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		<-s.cron.Stop().Done()
		cancel()
	}()
	return func() {
		<-ctx.Done()
	}
}

func (s *Scheduler) resetCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if ok, err := s.acquire(ctx); err != nil {
		s.log.Error().Err(err).Msg("acquire reset lock failed")
		return
	} else if !ok {
		s.log.Debug().Msg("catalog reset running elsewhere")
		return
	}

	if err := s.catalog.Reset(ctx); err != nil {
		s.log.Error().Err(err).Msg("catalog reset failed")
	}
}

func (s *Scheduler) acquire(ctx context.Context) (bool, error) {
	if s.lock == nil {
		return true, nil
	}
	return s.lock.SetNX(ctx, cache.Key(s.prefix, "jobs", "catalog-reset"), time.Now().Unix(), 30*time.Second).Result()
}
