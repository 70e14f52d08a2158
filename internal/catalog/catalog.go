package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"unigang/annex/internal/models"
	"unigang/annex/internal/pagination"
)

// Catalog is the listing service shared by the browse pages and the dashboard.
type Catalog struct {
	store    Store
	seed     []models.Listing
	pageSize int
	logger   zerolog.Logger
	now      func() time.Time

	// serializes id assignment with the insert that uses it
	mu sync.Mutex
}

func New(store Store, seed []models.Listing, pageSize int, logger zerolog.Logger) *Catalog {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Catalog{
		store:    store,
		seed:     seed,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "catalog").Logger(),
		now:      time.Now,
	}
}

func (c *Catalog) PageSize() int { return c.pageSize }

// Search filters the whole collection and returns the requested page, clamped into range.
func (c *Catalog) Search(ctx context.Context, f Filter, page int) (pagination.Page[models.Listing], error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return pagination.Page[models.Listing]{}, fmt.Errorf("list listings: %w", err)
	}
	v := NewView(items, c.pageSize)
	v.SetFilter(f)
	v.JumpTo(page)
	return v.Page(), nil
}

// View opens a stateful browse view over the current collection.
func (c *Catalog) View(ctx context.Context) (*View, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return NewView(items, c.pageSize), nil
}

// Recent returns up to limit listings, newest first. Listings created at the
// same instant are ordered by descending id.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]models.Listing, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return idNumber(a.ID) > idNumber(b.ID)
	})
	if limit < 0 {
		limit = 0
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func idNumber(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}

func (c *Catalog) Get(ctx context.Context, id string) (models.Listing, error) {
	return c.store.Get(ctx, id)
}

// ListByOwner returns the owner's listings in insertion order.
func (c *Catalog) ListByOwner(ctx context.Context, owner string) ([]models.Listing, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	out := make([]models.Listing, 0)
	for _, l := range items {
		if owner != "" && l.OwnerID == owner {
			out = append(out, l)
		}
	}
	return out, nil
}

func (c *Catalog) Create(ctx context.Context, owner string, draft models.ListingDraft) (models.Listing, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return models.Listing{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	var listing models.Listing
	// Another process sharing the store can take the id between List and
	// Insert; pick the next one once before giving up.
	for attempt := 0; ; attempt++ {
		items, err := c.store.List(ctx)
		if err != nil {
			return models.Listing{}, fmt.Errorf("list listings: %w", err)
		}
		listing = draft.Apply(models.Listing{
			ID:        NextID(items),
			OwnerID:   owner,
			CreatedAt: now,
			UpdatedAt: now,
		})
		err = c.store.Insert(ctx, listing)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateListing) && attempt == 0 {
			c.logger.Warn().Str("listing_id", listing.ID).Msg("listing id taken, retrying")
			continue
		}
		return models.Listing{}, fmt.Errorf("insert listing: %w", err)
	}

	c.logger.Info().Str("listing_id", listing.ID).Str("campus", listing.Campus).Msg("listing created")
	return listing, nil
}

// Update replaces the editable fields of an existing listing. Images become the
// kept existing references followed by the new ones.
func (c *Catalog) Update(ctx context.Context, id string, draft models.ListingDraft) (models.Listing, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return models.Listing{}, err
	}

	current, err := c.store.Get(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}

	updated := draft.Apply(current)
	updated.UpdatedAt = c.now().UTC()
	if err := c.store.Update(ctx, updated); err != nil {
		return models.Listing{}, fmt.Errorf("update listing: %w", err)
	}

	c.logger.Info().Str("listing_id", id).Msg("listing updated")
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.Info().Str("listing_id", id).Msg("listing deleted")
	return nil
}

// Reset replaces the whole collection with the seed listings.
func (c *Catalog) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Replace(ctx, c.seed); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	c.logger.Info().Int("listings", len(c.seed)).Msg("catalog reset to seed")
	return nil
}

// EnsureSeeded loads the seed listings into an empty store and leaves a
// populated one alone unless force is set. It reports whether it seeded.
func (c *Catalog) EnsureSeeded(ctx context.Context, force bool) (bool, error) {
	if !force {
		items, err := c.store.List(ctx)
		if err != nil {
			return false, fmt.Errorf("list listings: %w", err)
		}
		if len(items) > 0 {
			c.logger.Info().Int("listings", len(items)).Msg("catalog already populated, seed skipped")
			return false, nil
		}
	}
	if err := c.Reset(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Campuses returns the campus filter options: the known universities plus any
// campus used by a stored listing, sorted, with AllCampuses first.
func (c *Catalog) Campuses(ctx context.Context) ([]string, error) {
	items, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	seen := make(map[string]struct{}, len(Universities)+len(items))
	names := make([]string, 0, len(Universities)+len(items))
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, u := range Universities {
		add(u)
	}
	for _, l := range items {
		add(l.Campus)
	}
	sort.Strings(names)
	return append([]string{AllCampuses}, names...), nil
}

// NextID derives an identifier from the collection size, bumped until it is
// unused so deleting a listing never makes the next one collide.
func NextID(items []models.Listing) string {
	taken := make(map[string]struct{}, len(items))
	for _, l := range items {
		taken[l.ID] = struct{}{}
	}
	n := len(items) + 1
	for {
		id := strconv.Itoa(n)
		if _, ok := taken[id]; !ok {
			return id
		}
		n++
	}
}
