// Package cart is the persisted shopping cart. Each mutation builds a new
// line list, swaps it in under the store mutex and writes it through to the
// kv store.
package cart

import (
	"context"
	"sync"

	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

// ErrPersist wraps write-through failures. The in-memory cart already holds
// the new state when it is returned.
var ErrPersist = errors.New("cart could not be saved")

type Store struct {
	mu    sync.Mutex
	kv    kvstore.Store
	key   string
	items []models.CartItem
	dirty bool
}

func NewStore(kv kvstore.Store, cartID string) *Store {
	return &Store{kv: kv, key: kvstore.CartKey(cartID)}
}

// Totals sums quantities and price×quantity over the lines.
func Totals(items []models.CartItem) (int, int64) {
	var count int
	var price int64
	for _, item := range items {
		count += item.Quantity
		price += item.Price * int64(item.Quantity)
	}
	return count, price
}

func snapshot(items []models.CartItem) models.Cart {
	lines := make([]models.CartItem, len(items))
	copy(lines, items)
	count, price := Totals(lines)
	return models.Cart{Items: lines, TotalItems: count, TotalPrice: price}
}

// Load replaces the in-memory cart with the persisted one. Stored totals are
// ignored and recomputed.
func (s *Store) Load(ctx context.Context) (models.Cart, error) {
	var stored models.Cart
	ok, err := kvstore.GetJSON(ctx, s.kv, s.key, &stored)
	if err != nil {
		return models.Cart{}, errors.Wrap(err, "loading cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.items = nil
	} else {
		s.items = stored.Items
	}
	return snapshot(s.items), nil
}

// evictable reports whether the cart can be dropped from memory: never while
// it holds unsaved state, otherwise when empty or when force is set.
func (s *Store) evictable(force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		return false
	}
	return force || len(s.items) == 0
}

func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.items)
}

// AddItem merges into the line with the same item id and notes, or appends a
// new line.
func (s *Store) AddItem(ctx context.Context, item models.MenuItem, quantity int, notes string) (models.Cart, error) {
	return s.mutate(ctx, func(items []models.CartItem) []models.CartItem {
		for i := range items {
			if items[i].ID == item.ID && items[i].Notes == notes {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, models.CartItem{MenuItem: item, Quantity: quantity, Notes: notes})
	})
}

// RemoveItem drops every line for the item id regardless of notes.
func (s *Store) RemoveItem(ctx context.Context, id string) (models.Cart, error) {
	return s.mutate(ctx, func(items []models.CartItem) []models.CartItem {
		return removeLines(items, id)
	})
}

// UpdateQuantity sets the quantity of every line for id. Anything below one
// removes the lines.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (models.Cart, error) {
	return s.mutate(ctx, func(items []models.CartItem) []models.CartItem {
		if quantity < 1 {
			return removeLines(items, id)
		}
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

func (s *Store) Clear(ctx context.Context) (models.Cart, error) {
	return s.mutate(ctx, func([]models.CartItem) []models.CartItem {
		return nil
	})
}

func removeLines(items []models.CartItem, id string) []models.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) mutate(ctx context.Context, fn func([]models.CartItem) []models.CartItem) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]models.CartItem, len(s.items))
	copy(work, s.items)
	s.items = fn(work)
	return s.persist(ctx)
}

// persist writes the current lines through. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) (models.Cart, error) {
	cart := snapshot(s.items)
	if err := kvstore.SetJSON(ctx, s.kv, s.key, cart); err != nil {
		s.dirty = true
		return cart, errors.Wrap(ErrPersist, err.Error())
	}
	s.dirty = false
	return cart, nil
}

// Checkout hands the current cart to place and empties it only if place
// succeeds. The cart stays locked throughout, so lines added concurrently
// land either on the order or in the emptied cart, never in neither. A
// failed clear is reported as ErrPersist after the order went through.
func (s *Store) Checkout(ctx context.Context, place func(models.Cart) error) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := place(snapshot(s.items)); err != nil {
		return snapshot(s.items), err
	}
	s.items = nil
	return s.persist(ctx)
}
