package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/models"
)

var ErrNotOwner = errors.New("listing belongs to another client")

// Machine is the dashboard of one tab. It applies transition effects to the
// catalog on behalf of owner and is safe for concurrent use.
type Machine struct {
	mu      sync.Mutex
	state   State
	owner   string
	catalog *catalog.Catalog
	log     zerolog.Logger
}

func NewMachine(cat *catalog.Catalog, owner string, initial State, log zerolog.Logger) *Machine {
	return &Machine{
		state:   initial,
		owner:   owner,
		catalog: cat,
		log:     log,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Result is the outcome of a dispatched event.
type Result struct {
	State   State
	Effect  EffectKind
	Listing *models.Listing
}

// Dispatch runs ev through Transition and applies its effect. The state only
// advances when the effect succeeds.
func (m *Machine) Dispatch(ctx context.Context, ev Event) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, effect, err := Transition(m.state, ev)
	if err != nil {
		return Result{State: m.state}, err
	}
	if edit, ok := ev.(Edit); ok && edit.Record.OwnerID != m.owner {
		return Result{State: m.state}, fmt.Errorf("edit %s: %w", edit.Record.ID, ErrNotOwner)
	}

	listing, err := m.apply(ctx, effect)
	if err != nil {
		return Result{State: m.state}, err
	}

	if next.Kind() != m.state.Kind() {
		m.log.Debug().Str("from", string(m.state.Kind())).Str("to", string(next.Kind())).Str("effect", effect.Kind.String()).Msg("dashboard transition")
	}
	m.state = next
	return Result{State: next, Effect: effect.Kind, Listing: listing}, nil
}

// Sync forces the gate to match the session: Logout when it lost its token,
// Login when it gained one while the dashboard was gated.
func (m *Machine) Sync(ctx context.Context, authenticated bool) State {
	state := m.State()
	_, gated := state.(LoggedOut)
	switch {
	case !authenticated && !gated:
		res, _ := m.Dispatch(ctx, Logout{})
		return res.State
	case authenticated && gated:
		res, _ := m.Dispatch(ctx, Login{})
		return res.State
	}
	return state
}

func (m *Machine) apply(ctx context.Context, effect Effect) (*models.Listing, error) {
	switch effect.Kind {
	case EffectCreate:
		l, err := m.catalog.Create(ctx, m.owner, effect.Draft)
		if err != nil {
			return nil, err
		}
		return &l, nil

	case EffectUpdate:
		if err := m.owns(ctx, effect.ID); err != nil {
			return nil, err
		}
		l, err := m.catalog.Update(ctx, effect.ID, effect.Draft)
		if err != nil {
			return nil, err
		}
		return &l, nil

	case EffectDelete:
		if err := m.owns(ctx, effect.ID); err != nil {
			return nil, err
		}
		return nil, m.catalog.Delete(ctx, effect.ID)
	}
	return nil, nil
}

func (m *Machine) owns(ctx context.Context, id string) error {
	l, err := m.catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerID != m.owner {
		return fmt.Errorf("listing %s: %w", id, ErrNotOwner)
	}
	return nil
}
