package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var ErrUnknownKey = errors.New("unknown session key")

// Context is the session as seen by one tab of one client: the shared
// storage namespace, the tab's own bus and the cross-tab feed.
type Context struct {
	client    string
	tab       string
	store     Store
	feed      Feed
	logger    zerolog.Logger
	manager   *Manager
	entry     *tabEntry
	transient bool
}

func newContext(client, tab string, m *Manager, entry *tabEntry, transient bool) *Context {
	return &Context{
		client:    client,
		tab:       tab,
		store:     m.store,
		feed:      m.feed,
		logger:    m.logger,
		manager:   m,
		entry:     entry,
		transient: transient,
	}
}

func (c *Context) Client() string { return c.client }
func (c *Context) Tab() string    { return c.tab }
func (c *Context) Bus() *Bus      { return c.entry.bus }

// Transient reports whether the tab id was minted for this request.
func (c *Context) Transient() bool { return c.transient }

// Watch calls fn with every state delivered to this tab, including changes
// made by the client's other tabs, until the returned function is called.
func (c *Context) Watch(ctx context.Context, fn func(State)) (func(), error) {
	stop, err := c.manager.watch(ctx, c, fn)
	if err != nil {
		return nil, fmt.Errorf("watch session tab: %w", err)
	}
	return stop, nil
}

// State reads the namespace. Missing keys, including an empty namespace, yield a guest state.
func (c *Context) State(ctx context.Context) (State, error) {
	values, err := c.store.Load(ctx, c.client)
	if err != nil {
		return State{}, err
	}
	return StateFrom(values), nil
}

func (c *Context) Set(ctx context.Context, key, value string) error {
	return c.Update(ctx, map[string]string{key: value})
}

// Update writes values and announces the change to the client's other tabs.
// An empty value removes its key.
func (c *Context) Update(ctx context.Context, values map[string]string) error {
	set := make(map[string]string, len(values))
	var removed []string
	for k, v := range values {
		if !isKey(k) {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
		if v == "" {
			removed = append(removed, k)
			continue
		}
		set[k] = v
	}

	if err := c.store.Set(ctx, c.client, set); err != nil {
		return err
	}
	if err := c.store.Remove(ctx, c.client, removed...); err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	c.publish(ctx, keys)
	return nil
}

func (c *Context) Remove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if !isKey(k) {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
	}
	if err := c.store.Remove(ctx, c.client, keys...); err != nil {
		return err
	}
	c.publish(ctx, keys)
	return nil
}

// Clear removes every session key.
func (c *Context) Clear(ctx context.Context) error {
	return c.Remove(ctx, Keys...)
}

// NotifyAuthChanged reloads the state and delivers it to this tab's observers.
func (c *Context) NotifyAuthChanged(ctx context.Context) (State, error) {
	state, err := c.State(ctx)
	if err != nil {
		return State{}, err
	}
	c.entry.bus.Notify(state)
	return state, nil
}

// A failed publish leaves other tabs stale until their next read; the write itself succeeded.
func (c *Context) publish(ctx context.Context, keys []string) {
	if c.feed == nil || len(keys) == 0 {
		return
	}
	change := Change{Client: c.client, Tab: c.tab, Keys: keys}
	if err := c.feed.Publish(ctx, change); err != nil {
		c.logger.Warn().Err(err).Str("client", c.client).Msg("publish session change")
	}
}
