package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"unigang/annex/internal/cache"
)

// Change announces that keys of a client namespace were written by one tab.
type Change struct {
	Client string   `json:"client"`
	Tab    string   `json:"tab"`
	Keys   []string `json:"keys"`
}

// Feed fans storage changes out to the other tabs of the same client. A
// subscriber never receives the changes published by its own tab.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context, client, tab string, fn func(Change)) (func(), error)
}

type memorySub struct {
	tab string
	fn  func(Change)
}

type MemoryFeed struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]memorySub
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]memorySub)}
}

func (f *MemoryFeed) Publish(_ context.Context, change Change) error {
	f.mu.RLock()
	targets := make([]func(Change), 0, len(f.subs[change.Client]))
	for _, sub := range f.subs[change.Client] {
		if sub.tab != change.Tab {
			targets = append(targets, sub.fn)
		}
	}
	f.mu.RUnlock()

	for _, fn := range targets {
		fn(change)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ context.Context, client, tab string, fn func(Change)) (func(), error) {
	f.mu.Lock()
	id := f.next
	f.next++
	if f.subs[client] == nil {
		f.subs[client] = make(map[int]memorySub)
	}
	f.subs[client][id] = memorySub{tab: tab, fn: fn}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[client], id)
			if len(f.subs[client]) == 0 {
				delete(f.subs, client)
			}
			f.mu.Unlock()
		})
	}, nil
}

// RedisFeed carries changes over Redis pub/sub, one channel per client, so tabs
// served by different processes still see each other's writes.
type RedisFeed struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

func NewRedisFeed(client *redis.Client, prefix string, logger zerolog.Logger) *RedisFeed {
	return &RedisFeed{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "session_feed").Logger(),
	}
}

func (f *RedisFeed) Channel(client string) string {
	return cache.Key(f.prefix, "storage", client)
}

func (f *RedisFeed) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := f.client.Publish(ctx, f.Channel(change.Client), payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe returns once the subscription is confirmed by the server. Messages
// are delivered on a dedicated goroutine until the returned function is called.
func (f *RedisFeed) Subscribe(ctx context.Context, client, tab string, fn func(Change)) (func(), error) {
	pubsub := f.client.Subscribe(ctx, f.Channel(client))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", f.Channel(client), err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				f.logger.Warn().Err(err).Str("channel", msg.Channel).Msg("drop malformed change")
				continue
			}
			if change.Tab == tab {
				continue
			}
			fn(change)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = pubsub.Close()
			<-done
		})
	}, nil
}
