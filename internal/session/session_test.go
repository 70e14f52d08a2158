package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newRedis(t), "annex"),
	}
}

func TestStoreMissingNamespaceIsEmpty(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			values, err := store.Load(context.Background(), "nobody")
			require.NoError(t, err)
			assert.Empty(t, values)
			assert.False(t, StateFrom(values).Authenticated())
		})
	}
}

func TestStoreSetRemove(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "c1", map[string]string{KeyToken: "t", KeyName: "Amal"}))
			require.NoError(t, store.Set(ctx, "c2", map[string]string{KeyToken: "other"}))
			require.NoError(t, store.Remove(ctx, "c1", KeyToken))

			values, err := store.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{KeyName: "Amal"}, values)

			values, err = store.Load(ctx, "c2")
			require.NoError(t, err)
			assert.Equal(t, "other", values[KeyToken])
		})
	}
}

func TestRedisStoreUsesOneHashPerClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "annex")
	require.NoError(t, store.Set(context.Background(), "c1", map[string]string{KeyEmail: "a@b.lk"}))
	assert.Equal(t, "a@b.lk", mr.HGet("annex:session:c1", KeyEmail))
}

func TestStateValuesRoundTrip(t *testing.T) {
	s := State{Token: "t", Name: "n", Email: "e", University: "u"}
	assert.Equal(t, s, StateFrom(s.Values()))
	assert.NotContains(t, s.Values(), KeyPhone)
}

func TestAuthenticatedDependsOnTokenOnly(t *testing.T) {
	assert.False(t, State{Name: "Amal", Email: "a@b.lk"}.Authenticated())
	assert.True(t, State{Token: "x"}.Authenticated())
}

func TestBusNotifiesInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(s State) { got = append(got, "first:"+s.Name) })
	unsubscribe := bus.Subscribe(func(s State) { got = append(got, "second:"+s.Name) })

	bus.Notify(State{Name: "a"})
	unsubscribe()
	unsubscribe()
	bus.Notify(State{Name: "b"})

	assert.Equal(t, []string{"first:a", "second:a", "first:b"}, got)
	assert.Equal(t, 1, bus.Len())
}

func TestMemoryFeedSkipsOriginTab(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	var a, b, other []Change
	_, err := feed.Subscribe(ctx, "c1", "tab-a", func(ch Change) { a = append(a, ch) })
	require.NoError(t, err)
	unsubscribeB, err := feed.Subscribe(ctx, "c1", "tab-b", func(ch Change) { b = append(b, ch) })
	require.NoError(t, err)
	_, err = feed.Subscribe(ctx, "c2", "tab-a", func(ch Change) { other = append(other, ch) })
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, Change{Client: "c1", Tab: "tab-a", Keys: []string{KeyToken}}))
	assert.Empty(t, a)
	require.Len(t, b, 1)
	assert.Empty(t, other)

	unsubscribeB()
	require.NoError(t, feed.Publish(ctx, Change{Client: "c1", Tab: "tab-c", Keys: []string{KeyName}}))
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}

func TestRedisFeedDeliversToOtherTabs(t *testing.T) {
	client := newRedis(t)
	feed := NewRedisFeed(client, "annex", zerolog.Nop())
	ctx := context.Background()

	var mu sync.Mutex
	var received []Change
	unsubscribe, err := feed.Subscribe(ctx, "c1", "tab-b", func(ch Change) {
		mu.Lock()
		received = append(received, ch)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, feed.Publish(ctx, Change{Client: "c1", Tab: "tab-b", Keys: []string{KeyName}}))
	require.NoError(t, feed.Publish(ctx, Change{Client: "c1", Tab: "tab-a", Keys: []string{KeyToken}}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "tab-a", received[0].Tab)
	assert.Equal(t, []string{KeyToken}, received[0].Keys)
	mu.Unlock()
	assert.Equal(t, "annex:storage:c1", feed.Channel("c1"))
}

func TestContextUpdateAndClear(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	sc, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)

	require.NoError(t, sc.Update(ctx, map[string]string{KeyToken: "t", KeyName: "Amal", KeyPhone: ""}))
	state, err := sc.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.Authenticated())
	assert.Equal(t, "Amal", state.Name)

	require.NoError(t, sc.Set(ctx, KeyName, ""))
	state, err = sc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", state.Name)

	require.NoError(t, sc.Clear(ctx))
	state, err = sc.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{}, state)
}

func TestContextRejectsUnknownKeys(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	sc, err := m.Open(context.Background(), "c1", "tab-a")
	require.NoError(t, err)

	assert.ErrorIs(t, sc.Set(context.Background(), "isAdmin", "true"), ErrUnknownKey)
	assert.ErrorIs(t, sc.Remove(context.Background(), "isAdmin"), ErrUnknownKey)
}

func TestSameTabNotifyIsSynchronous(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	ctx := context.Background()
	sc, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)

	var seen State
	sc.Bus().Subscribe(func(s State) { seen = s })

	require.NoError(t, sc.Update(ctx, map[string]string{KeyToken: "t", KeyName: "Amal"}))
	assert.Equal(t, State{}, seen, "writes alone do not notify the writing tab")

	_, err = sc.NotifyAuthChanged(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amal", seen.Name)
}

func TestOtherTabsObserveChanges(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	ctx := context.Background()

	a, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	b, err := m.Open(ctx, "c1", "tab-b")
	require.NoError(t, err)
	otherClient, err := m.Open(ctx, "c2", "tab-a")
	require.NoError(t, err)

	var onA, onB, onOther []State
	_, err = a.Watch(ctx, func(s State) { onA = append(onA, s) })
	require.NoError(t, err)
	_, err = b.Watch(ctx, func(s State) { onB = append(onB, s) })
	require.NoError(t, err)
	_, err = otherClient.Watch(ctx, func(s State) { onOther = append(onOther, s) })
	require.NoError(t, err)

	require.NoError(t, a.Update(ctx, map[string]string{KeyToken: "t"}))
	assert.Empty(t, onA)
	require.Len(t, onB, 1)
	assert.True(t, onB[0].Authenticated())
	assert.Empty(t, onOther)

	require.NoError(t, b.Clear(ctx))
	require.Len(t, onA, 1)
	assert.False(t, onA[0].Authenticated())
}

func TestFeedSubscriptionFollowsWatchers(t *testing.T) {
	feed := NewMemoryFeed()
	m := NewManager(NewMemoryStore(), feed, zerolog.Nop())
	ctx := context.Background()

	sc, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	assert.Empty(t, feed.subs, "opening a tab does not subscribe it")

	stopFirst, err := sc.Watch(ctx, func(State) {})
	require.NoError(t, err)
	stopSecond, err := sc.Watch(ctx, func(State) {})
	require.NoError(t, err)
	assert.Len(t, feed.subs["c1"], 1)

	stopFirst()
	assert.Len(t, feed.subs["c1"], 1)
	stopSecond()
	stopSecond()
	assert.Empty(t, feed.subs)
	assert.Equal(t, 0, sc.Bus().Len())
}

func TestRedisFeedSubscriptionClosesWithLastWatcher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	feed := NewRedisFeed(client, "annex", zerolog.Nop())
	m := NewManager(NewRedisStore(client, "annex"), feed, zerolog.Nop())
	defer m.Close()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := m.Open(ctx, "c1", fmt.Sprintf("tab-%d", i))
		require.NoError(t, err)
	}
	assert.Zero(t, mr.PubSubNumSub(feed.Channel("c1"))[feed.Channel("c1")])

	sc, err := m.Open(ctx, "c1", "tab-0")
	require.NoError(t, err)
	stop, err := sc.Watch(ctx, func(State) {})
	require.NoError(t, err)
	assert.Equal(t, 1, mr.PubSubNumSub(feed.Channel("c1"))[feed.Channel("c1")])

	stop()
	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub(feed.Channel("c1"))[feed.Channel("c1")] == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTransientTabsAreNotTracked(t *testing.T) {
	feed := NewMemoryFeed()
	m := NewManager(NewMemoryStore(), feed, zerolog.Nop())

	for i := 0; i < 50; i++ {
		sc := m.Transient("c1", fmt.Sprintf("minted-%d", i))
		assert.True(t, sc.Transient())
	}
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, feed.subs)
}

func TestSweepEvictsIdleTabs(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	var evicted []string
	m.OnEvict(func(client, tab string) { evicted = append(evicted, client+"/"+tab) })

	_, err := m.Open(ctx, "c1", "idle")
	require.NoError(t, err)
	watched, err := m.Open(ctx, "c1", "streaming")
	require.NoError(t, err)
	stop, err := watched.Watch(ctx, func(State) {})
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = m.Open(ctx, "c1", "active")
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	assert.Equal(t, []string{"c1/idle"}, evicted)
	assert.Equal(t, 2, m.Len())

	stop()
	assert.Equal(t, 1, m.Sweep(30*time.Minute))
	assert.Equal(t, 1, m.Len())
}

func TestOpenReusesTabBus(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())
	ctx := context.Background()

	first, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	second, err := m.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	assert.Same(t, first.Bus(), second.Bus())
}

func TestBeginGuardsPerClient(t *testing.T) {
	m := NewManager(NewMemoryStore(), NewMemoryFeed(), zerolog.Nop())

	release, ok := m.Begin("c1")
	require.True(t, ok)

	_, ok = m.Begin("c1")
	assert.False(t, ok)

	releaseOther, ok := m.Begin("c2")
	require.True(t, ok)
	releaseOther()

	release()
	release()
	again, ok := m.Begin("c1")
	require.True(t, ok)
	again()
}
