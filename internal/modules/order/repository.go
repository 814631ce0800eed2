package order

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/google/uuid"
)

// StorageKey is where the order history is persisted.
const StorageKey = "pedidos"

// Repository defines data access for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID int) ([]*Order, error)
	// List returns every order, newest first, optionally filtered by status.
	List(ctx context.Context, status Status) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}

type storageRepository struct {
	mu      sync.RWMutex
	orders  []*Order
	storage storage.Storage
	logger  *log.Logger
}

// NewStorageRepository keeps the whole order history under StorageKey,
// rewriting it on every change. An unreadable history starts empty.
func NewStorageRepository(ctx context.Context, st storage.Storage, logger *log.Logger) Repository {
	r := &storageRepository{storage: st, logger: logger}
	var stored []*Order
	if _, err := storage.LoadJSON(ctx, st, StorageKey, &stored); err != nil {
		logger.Printf("load orders: %v", err)
	}
	r.orders = stored
	return r
}

func (r *storageRepository) persist(ctx context.Context) {
	if err := storage.SaveJSON(ctx, r.storage, StorageKey, r.orders); err != nil {
		r.logger.Printf("save orders: %v", err)
	}
}

func (r *storageRepository) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o.clone())
	r.persist(ctx)
	return nil
}

func (r *storageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.find(func(o *Order) bool { return o.ID == id })
}

func (r *storageRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return r.find(func(o *Order) bool { return o.Number == number })
}

func (r *storageRepository) find(pred func(*Order) bool) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if pred(o) {
			return o.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *storageRepository) ListByUser(ctx context.Context, userID int) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.UserID == userID }), nil
}

func (r *storageRepository) List(ctx context.Context, status Status) ([]*Order, error) {
	return r.list(func(o *Order) bool { return status == "" || o.Status == status }), nil
}

func (r *storageRepository) list(pred func(*Order) bool) []*Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Order{}
	for _, o := range r.orders {
		if pred(o) {
			out = append(out, o.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *storageRepository) Update(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.orders {
		if existing.ID == o.ID {
			r.orders[i] = o.clone()
			r.persist(ctx)
			return nil
		}
	}
	return ErrNotFound
}
