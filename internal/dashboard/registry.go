package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"unigang/annex/internal/catalog"
	"unigang/annex/internal/session"
)

type machineKey struct {
	client string
	tab    string
}

// Registry keeps one Machine per tracked (client, tab). Machines re-check the
// session gate on every lookup, so a logout in any tab of the client gates
// them on their next use.
type Registry struct {
	catalog *catalog.Catalog
	log     zerolog.Logger

	mu       sync.Mutex
	machines map[machineKey]*Machine
}

func NewRegistry(cat *catalog.Catalog, log zerolog.Logger) *Registry {
	return &Registry{
		catalog:  cat,
		log:      log.With().Str("component", "dashboard").Logger(),
		machines: make(map[machineKey]*Machine),
	}
}

// Machine returns the tab's machine, created on first use, with its gate
// synchronized to the current session state. A transient tab gets a fresh
// machine that is not kept.
func (r *Registry) Machine(ctx context.Context, sc *session.Context) (*Machine, error) {
	state, err := sc.State(ctx)
	if err != nil {
		return nil, err
	}

	key := machineKey{client: sc.Client(), tab: sc.Tab()}
	newMachine := func() *Machine {
		return NewMachine(r.catalog, sc.Client(), Initial(state.Authenticated(), ""), r.log.With().Str("client", key.client).Str("tab", key.tab).Logger())
	}

	if sc.Transient() {
		return newMachine(), nil
	}

	r.mu.Lock()
	m, ok := r.machines[key]
	if !ok {
		m = newMachine()
		r.machines[key] = m
	}
	r.mu.Unlock()

	m.Sync(ctx, state.Authenticated())
	return m, nil
}

// Forget drops the machine of (client, tab).
func (r *Registry) Forget(client, tab string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.machines, machineKey{client: client, tab: tab})
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}
