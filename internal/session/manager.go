package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type tabKey struct {
	client string
	tab    string
}

// tabEntry is the per-tab state shared by every Context of the tab. The feed
// subscription only exists while the tab has watchers.
type tabEntry struct {
	bus *Bus

	mu          sync.Mutex
	watchers    int
	unsubscribe func()

	// guarded by Manager.mu
	lastSeen time.Time
}

func newTabEntry() *tabEntry {
	return &tabEntry{bus: NewBus()}
}

// Manager opens session contexts. A tab the caller identified keeps one bus
// until it has been idle for longer than the sweep cutoff; each client gets
// one in-flight guard for auth flows.
type Manager struct {
	store  Store
	feed   Feed
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	tabs     map[tabKey]*tabEntry
	inflight map[string]struct{}
	onEvict  []func(client, tab string)
}

func NewManager(store Store, feed Feed, logger zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		feed:     feed,
		logger:   logger.With().Str("component", "session").Logger(),
		now:      time.Now,
		tabs:     make(map[tabKey]*tabEntry),
		inflight: make(map[string]struct{}),
	}
}

func (m *Manager) Store() Store { return m.store }

// Open returns the context of a tab the caller identified, marking it as seen.
func (m *Manager) Open(_ context.Context, client, tab string) (*Context, error) {
	key := tabKey{client: client, tab: tab}

	m.mu.Lock()
	entry, ok := m.tabs[key]
	if !ok {
		entry = newTabEntry()
		m.tabs[key] = entry
	}
	entry.lastSeen = m.now()
	m.mu.Unlock()

	return newContext(client, tab, m, entry, false), nil
}

// Transient returns a context for a tab id minted for this request only. It is
// not tracked, so nothing outlives the request unless the caller watches it.
func (m *Manager) Transient(client, tab string) *Context {
	return newContext(client, tab, m, newTabEntry(), true)
}

// OnEvict registers fn to run for every tab dropped by Sweep.
func (m *Manager) OnEvict(fn func(client, tab string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = append(m.onEvict, fn)
}

// Sweep drops tabs that have not been opened for idle and have no watchers.
// It returns the number of tabs dropped.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var evicted []tabKey
	for key, entry := range m.tabs {
		if entry.lastSeen.After(cutoff) {
			continue
		}
		entry.mu.Lock()
		watched := entry.watchers > 0
		entry.mu.Unlock()
		if watched {
			continue
		}
		delete(m.tabs, key)
		evicted = append(evicted, key)
	}
	hooks := append(([]func(client, tab string))(nil), m.onEvict...)
	m.mu.Unlock()

	for _, key := range evicted {
		for _, fn := range hooks {
			fn(key.client, key.tab)
		}
	}
	if len(evicted) > 0 {
		m.logger.Debug().Int("tabs", len(evicted)).Msg("idle session tabs evicted")
	}
	return len(evicted)
}

// Len returns the number of tracked tabs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tabs)
}

// watch adds fn to the tab's bus, subscribing the tab to the feed when it is
// the first watcher. The subscription is made without holding Manager.mu.
func (m *Manager) watch(ctx context.Context, sc *Context, fn func(State)) (func(), error) {
	entry := sc.entry

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.watchers == 0 {
		bus := entry.bus
		unsubscribe, err := m.feed.Subscribe(context.WithoutCancel(ctx), sc.client, sc.tab, func(change Change) {
			m.remoteChange(sc.client, bus, change)
		})
		if err != nil {
			return nil, err
		}
		entry.unsubscribe = unsubscribe
	}
	entry.watchers++
	removeObserver := entry.bus.Subscribe(fn)

	var once sync.Once
	return func() {
		once.Do(func() {
			removeObserver()

			entry.mu.Lock()
			defer entry.mu.Unlock()
			entry.watchers--
			if entry.watchers == 0 && entry.unsubscribe != nil {
				entry.unsubscribe()
				entry.unsubscribe = nil
			}
		})
	}, nil
}

// Storage events carry no value; the receiving tab re-reads the namespace.
func (m *Manager) remoteChange(client string, bus *Bus, change Change) {
	values, err := m.store.Load(context.Background(), client)
	if err != nil {
		m.logger.Warn().Err(err).Str("client", client).Msg("reload session after remote change")
		return
	}
	m.logger.Debug().Str("client", client).Str("from_tab", change.Tab).Strs("keys", change.Keys).Msg("remote session change")
	bus.Notify(StateFrom(values))
}

// Begin claims the client's auth guard. ok is false when another auth flow is
// already running for the client; otherwise release must be called when done.
func (m *Manager) Begin(client string) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.inflight[client]; busy {
		return nil, false
	}
	m.inflight[client] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.inflight, client)
			m.mu.Unlock()
		})
	}, true
}

// Close drops every tracked tab and its feed subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := make([]*tabEntry, 0, len(m.tabs))
	for k, e := range m.tabs {
		entries = append(entries, e)
		delete(m.tabs, k)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		if e.unsubscribe != nil {
			e.unsubscribe()
			e.unsubscribe = nil
		}
		e.mu.Unlock()
	}
}
