package session

import (
	"sort"
	"sync"
)

// Bus delivers session changes to observers in the same tab. Notify calls
// every observer before it returns.
type Bus struct {
	mu        sync.RWMutex
	next      int
	observers map[int]func(State)
}

func NewBus() *Bus {
	return &Bus{observers: make(map[int]func(State))}
}

// Subscribe registers fn and returns the function that removes it.
func (b *Bus) Subscribe(fn func(State)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.observers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.observers, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Notify(s State) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	fns := make([]func(State), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, b.observers[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}
