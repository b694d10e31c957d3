package lock

import (
	"sync"

	"github.com/google/uuid"
)

// Keyed serializes critical sections per key. The booking allocator locks on
// the doctor ID so that two requests racing for the last free slot of one
// doctor are decided in order, while bookings for different doctors proceed
// in parallel. Entries are reference counted and removed once idle.
type Keyed struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[uuid.UUID]*entry)}
}

// Lock blocks until the key's mutex is held.
func (k *Keyed) Lock(key uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the key's mutex and drops the entry when no other caller
// is waiting on it.
func (k *Keyed) Unlock(key uuid.UUID) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("lock: unlock of unheld key")
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// Do runs fn while holding the key's mutex.
func (k *Keyed) Do(key uuid.UUID, fn func() error) error {
	k.Lock(key)
	defer k.Unlock(key)
	return fn()
}
