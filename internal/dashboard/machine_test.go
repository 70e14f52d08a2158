package dashboard

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/models"
	"unigang/annex/internal/session"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New(catalog.NewMemoryStore(), catalog.Seed(), 9, zerolog.Nop())
	require.NoError(t, c.Reset(context.Background()))
	return c
}

func TestMachineCreateEditDelete(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)
	m := NewMachine(cat, "c1", Initial(true, ""), zerolog.Nop())

	res, err := m.Dispatch(ctx, Submit{Draft: draft("First")})
	require.NoError(t, err)
	assert.Equal(t, List{}, res.State)
	assert.Equal(t, EffectCreate, res.Effect)
	require.NotNil(t, res.Listing)
	created := *res.Listing
	assert.Equal(t, "21", created.ID)
	assert.Equal(t, "c1", created.OwnerID)

	_, err = m.Dispatch(ctx, Edit{Record: created})
	require.NoError(t, err)

	form := FormFor(m.State())
	form.Title = "First, edited"
	form.NewImages = []string{"n"}
	res, err = m.Dispatch(ctx, Submit{Draft: form})
	require.NoError(t, err)
	assert.Equal(t, EffectUpdate, res.Effect)
	assert.Equal(t, "First, edited", res.Listing.Title)
	assert.Equal(t, "21", res.Listing.ID)

	res, err = m.Dispatch(ctx, Delete{ID: "21"})
	require.NoError(t, err)
	assert.Equal(t, EffectNone, res.Effect)
	_, err = cat.Get(ctx, "21")
	require.NoError(t, err)

	res, err = m.Dispatch(ctx, Delete{ID: "21", Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, EffectDelete, res.Effect)
	_, err = cat.Get(ctx, "21")
	assert.ErrorIs(t, err, catalog.ErrListingNotFound)
}

func TestMachineEditSubmitRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)
	m := NewMachine(cat, "c1", Initial(true, ""), zerolog.Nop())

	res, err := m.Dispatch(ctx, Submit{Draft: draft("Unchanged")})
	require.NoError(t, err)
	before := *res.Listing

	_, err = m.Dispatch(ctx, Edit{Record: before})
	require.NoError(t, err)
	res, err = m.Dispatch(ctx, Submit{Draft: FormFor(m.State())})
	require.NoError(t, err)

	after := *res.Listing
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestMachineInvalidSubmitKeepsForm(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(newCatalog(t), "c1", FormCreate{}, zerolog.Nop())

	res, err := m.Dispatch(ctx, Submit{Draft: models.ListingDraft{}})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, FormCreate{}, res.State)
	assert.Equal(t, FormCreate{}, m.State())
}

func TestMachineRefusesForeignListings(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)
	m := NewMachine(cat, "c1", List{}, zerolog.Nop())

	seeded, err := cat.Get(ctx, "1")
	require.NoError(t, err)

	_, err = m.Dispatch(ctx, Edit{Record: seeded})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, List{}, m.State())

	_, err = m.Dispatch(ctx, Delete{ID: "1", Confirmed: true})
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = cat.Get(ctx, "1")
	assert.NoError(t, err)
}

func TestMachineDeleteMissing(t *testing.T) {
	m := NewMachine(newCatalog(t), "c1", List{}, zerolog.Nop())
	_, err := m.Dispatch(context.Background(), Delete{ID: "999", Confirmed: true})
	assert.ErrorIs(t, err, catalog.ErrListingNotFound)
}

func TestMachineUpdateOfDeletedTargetStaysInForm(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)
	m := NewMachine(cat, "c1", FormCreate{}, zerolog.Nop())

	res, err := m.Dispatch(ctx, Submit{Draft: draft("Soon gone")})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, Edit{Record: *res.Listing})
	require.NoError(t, err)
	require.NoError(t, cat.Delete(ctx, res.Listing.ID))

	_, err = m.Dispatch(ctx, Submit{Draft: FormFor(m.State())})
	assert.ErrorIs(t, err, catalog.ErrListingNotFound)
	assert.Equal(t, KindFormEdit, m.State().Kind())
}

func TestMachineConcurrentSubmits(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := NewMachine(cat, "c1", FormCreate{}, zerolog.Nop())
			_, err := m.Dispatch(ctx, Submit{Draft: draft("parallel")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mine, err := cat.ListByOwner(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, mine, 8)
	seen := map[string]bool{}
	for _, l := range mine {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
}

func TestMachineSync(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(newCatalog(t), "c1", List{}, zerolog.Nop())

	assert.Equal(t, LoggedOut{}, m.Sync(ctx, false))
	assert.Equal(t, LoggedOut{}, m.Sync(ctx, false))
	assert.Equal(t, FormCreate{}, m.Sync(ctx, true))
	assert.Equal(t, FormCreate{}, m.Sync(ctx, true))
}

func TestRegistryFollowsOtherTabsOnLookup(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(session.NewMemoryStore(), session.NewMemoryFeed(), zerolog.Nop())
	defer manager.Close()
	reg := NewRegistry(newCatalog(t), zerolog.Nop())

	tabA, err := manager.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	tabB, err := manager.Open(ctx, "c1", "tab-b")
	require.NoError(t, err)

	m, err := reg.Machine(ctx, tabB)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut{}, m.State())

	require.NoError(t, tabA.Set(ctx, session.KeyToken, "t"))
	m, err = reg.Machine(ctx, tabB)
	require.NoError(t, err)
	assert.Equal(t, FormCreate{}, m.State(), "login in another tab opens the gate")

	_, err = m.Dispatch(ctx, ViewHint{Hint: HintMyAds})
	require.NoError(t, err)

	require.NoError(t, tabA.Clear(ctx))
	again, err := reg.Machine(ctx, tabB)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, LoggedOut{}, again.State(), "logout in another tab closes the gate")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryTransientAndForget(t *testing.T) {
	ctx := context.Background()
	manager := session.NewManager(session.NewMemoryStore(), session.NewMemoryFeed(), zerolog.Nop())
	defer manager.Close()
	reg := NewRegistry(newCatalog(t), zerolog.Nop())
	manager.OnEvict(reg.Forget)

	for i := 0; i < 10; i++ {
		m, err := reg.Machine(ctx, manager.Transient("c1", fmt.Sprintf("minted-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, LoggedOut{}, m.State())
	}
	assert.Equal(t, 0, reg.Len())

	sc, err := manager.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	_, err = reg.Machine(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	assert.Equal(t, 1, manager.Sweep(0))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySyncsOnLookup(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	manager := session.NewManager(store, session.NewMemoryFeed(), zerolog.Nop())
	defer manager.Close()
	reg := NewRegistry(newCatalog(t), zerolog.Nop())

	sc, err := manager.Open(ctx, "c1", "tab-a")
	require.NoError(t, err)
	m, err := reg.Machine(ctx, sc)
	require.NoError(t, err)
	require.Equal(t, LoggedOut{}, m.State())

	// written behind the manager's back, so no bus event
	require.NoError(t, store.Set(ctx, "c1", map[string]string{session.KeyToken: "t"}))

	m, err = reg.Machine(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, FormCreate{}, m.State())
}
