package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"unigang/annex/internal/models"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrDuplicateListing = errors.New("duplicate listing id")
)

// Store persists listings in insertion order.
type Store interface {
	List(ctx context.Context) ([]models.Listing, error)
	Get(ctx context.Context, id string) (models.Listing, error)
	Insert(ctx context.Context, l models.Listing) error
	Update(ctx context.Context, l models.Listing) error
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, items []models.Listing) error
}

// MemoryStore is the in-process Store. Listings are cloned on the way in and
// out so callers never alias its slices.
type MemoryStore struct {
	mu    sync.RWMutex
	items []models.Listing
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(_ context.Context) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Listing, len(s.items))
	for i, l := range s.items {
		out[i] = l.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.items[i].Clone(), nil
	}
	return models.Listing{}, ErrListingNotFound
}

func (s *MemoryStore) Insert(_ context.Context, l models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(l.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateListing, l.ID)
	}
	s.items = append(s.items, l.Clone())
	return nil
}

func (s *MemoryStore) Update(_ context.Context, l models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(l.ID)
	if i < 0 {
		return ErrListingNotFound
	}
	s.items[i] = l.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrListingNotFound
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, items []models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]models.Listing, len(items))
	for i, l := range items {
		s.items[i] = l.Clone()
	}
	return nil
}

func (s *MemoryStore) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
