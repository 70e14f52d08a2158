package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"unigang/annex/internal/config"
)

// NewRedisClient connects the session store, the cross-tab feed and the job
// lock. Every feed subscription holds a connection of its own outside the pool.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// request deadlines bound session reads instead of the fixed socket timeouts
		ContextTimeoutEnabled: true,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// Key joins a namespace prefix and key parts with ':'. Empty parts are skipped.
func Key(prefix string, parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	for _, p := range append([]string{prefix}, parts...) {
		if p != "" {
			all = append(all, p)
		}
	}
	return strings.Join(all, ":")
}
