package cart

import (
	"context"
	"sync"

	"github.com/pawonsalam/restosuite/internal/kvstore"
)

// DefaultMaxIdle bounds how many idle carts a registry keeps in memory.
const DefaultMaxIdle = 1024

type entry struct {
	store *Store
	refs  int
}

// Registry hands out one Store per cart id, loading it from the kv store the
// first time it is requested. A Store stays cached while a caller holds it.
// Once released, an empty cart is dropped at once and a non-empty one is
// dropped when more than maxIdle carts are cached. Carts whose last write
// failed are never dropped.
type Registry struct {
	mu      sync.Mutex
	kv      kvstore.Store
	maxIdle int
	carts   map[string]*entry
}

func NewRegistry(kv kvstore.Store) *Registry {
	return NewRegistryWithLimit(kv, DefaultMaxIdle)
}

func NewRegistryWithLimit(kv kvstore.Store, maxIdle int) *Registry {
	if maxIdle < 0 {
		maxIdle = 0
	}
	return &Registry{kv: kv, maxIdle: maxIdle, carts: make(map[string]*entry)}
}

// Acquire returns the cart and a release func the caller must call when done
// with it.
func (r *Registry) Acquire(ctx context.Context, cartID string) (*Store, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.carts[cartID]
	if !ok {
		s := NewStore(r.kv, cartID)
		if _, err := s.Load(ctx); err != nil {
			return nil, nil, err
		}
		e = &entry{store: s}
		r.carts[cartID] = e
	}
	e.refs++

	var once sync.Once
	return e.store, func() { once.Do(func() { r.release(cartID, e) }) }, nil
}

func (r *Registry) release(cartID string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.refs--
	if e.refs > 0 || r.carts[cartID] != e {
		return
	}
	if e.store.evictable(len(r.carts) > r.maxIdle) {
		delete(r.carts, cartID)
	}
}

// Len reports how many carts are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
