package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/georgemunganga/mascotas-backend/internal/platform/observable"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/google/uuid"
)

// StorageKey is where the whole cart is persisted.
const StorageKey = "carrito"

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Store owns the session's cart. Stock levels are not checked against the
// catalog when adding.
type Store struct {
	mu      sync.Mutex // serializes writers
	cart    *observable.Subject[Cart]
	count   *observable.Subject[int]
	storage storage.Storage
	logger  *log.Logger
}

// NewStore restores the persisted cart, or starts empty when none is stored
// or it cannot be read.
func NewStore(ctx context.Context, st storage.Storage, logger *log.Logger) *Store {
	initial := empty()
	var stored Cart
	found, err := storage.LoadJSON(ctx, st, StorageKey, &stored)
	switch {
	case err != nil:
		logger.Printf("load cart: %v", err)
	case found:
		if stored.Items == nil {
			stored.Items = []Item{}
		}
		initial = stored.recalculate()
	}

	return &Store{
		cart:    observable.New(initial),
		count:   observable.New(initial.Count),
		storage: st,
		logger:  logger,
	}
}

// commit recomputes the aggregates, publishes and persists. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, c Cart) {
	c = c.recalculate()
	s.cart.Next(c)
	s.count.Next(c.Count)
	if err := storage.SaveJSON(ctx, s.storage, StorageKey, c); err != nil {
		s.logger.Printf("save cart: %v", err)
	}
}

// Add puts quantity units of product in the cart, increasing the existing
// line when the product is already there.
func (s *Store) Add(ctx context.Context, product catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart.Value().clone()
	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity += quantity
		c.Items[i].Product = product.Clone()
	} else {
		c.Items = append(c.Items, Item{
			ID:        uuid.New(),
			ProductID: product.ID,
			Product:   product.Clone(),
			Quantity:  quantity,
		})
	}
	s.commit(ctx, c)
	return nil
}

// Remove drops the line for productID. Removing an absent product is a no-op
// that still republishes the cart.
func (s *Store) Remove(ctx context.Context, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID int) {
	c := s.cart.Value().clone()
	kept := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	s.commit(ctx, c)
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
// Setting the quantity of a product that is not in the cart does nothing.
func (s *Store) SetQuantity(ctx context.Context, productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(ctx, productID)
		return
	}
	c := s.cart.Value().clone()
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.Items[i].Quantity = quantity
	s.commit(ctx, c)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, empty())
}

// Drain hands a copy of the cart to fn and empties the cart when fn succeeds.
// The cart stays locked while fn runs, so no write can slip in between the
// copy and the clear; fn must not call back into the store.
func (s *Store) Drain(ctx context.Context, fn func(Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cart.Value().clone()); err != nil {
		return err
	}
	s.commit(ctx, empty())
	return nil
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Cart {
	return s.cart.Value().clone()
}

// ItemCount streams the number of units in the cart, starting with the
// current value, until ctx is done. Only the latest count is buffered.
func (s *Store) ItemCount(ctx context.Context) <-chan int {
	return s.count.Stream(ctx)
}

func (s *Store) Contains(productID int) bool {
	return s.cart.Value().indexOf(productID) >= 0
}

// QuantityOf returns how many units of productID are in the cart, 0 if none.
func (s *Store) QuantityOf(productID int) int {
	c := s.cart.Value()
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Subscribe calls fn with the current cart and after every change.
func (s *Store) Subscribe(fn func(Cart)) func() {
	return s.cart.Subscribe(func(c Cart) { fn(c.clone()) })
}
