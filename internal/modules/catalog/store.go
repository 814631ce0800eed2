package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/georgemunganga/mascotas-backend/internal/platform/observable"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
)

// StorageKey is where the whole product collection is persisted.
const StorageKey = "tienda_mascotas_productos"

// Store owns the product collection. Every write replaces the collection,
// notifies subscribers and persists the whole collection; there is no
// diffing and no version check, the last writer wins.
type Store struct {
	mu       sync.Mutex // serializes writers
	products *observable.Subject[[]Product]
	storage  storage.Storage
	logger   *log.Logger
}

// NewStore loads the catalog from st, falling back to the seed catalog when
// nothing usable is stored.
func NewStore(ctx context.Context, st storage.Storage, logger *log.Logger) (*Store, error) {
	s := &Store{
		products: observable.New[[]Product](nil),
		storage:  st,
		logger:   logger,
	}

	var stored []Product
	if _, err := storage.LoadJSON(ctx, st, StorageKey, &stored); err != nil {
		logger.Printf("load products: %v", err)
		stored = nil
	}
	if len(stored) > 0 {
		s.products.Next(stored)
		return s, nil
	}
	if err := s.loadSeed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadSeed(ctx context.Context) error {
	seed, err := SeedProducts()
	if err != nil {
		return err
	}
	s.commit(ctx, seed)
	s.logger.Printf("seeded catalog with %d products", len(seed))
	return nil
}

// commit publishes next and writes it to storage. Callers hold s.mu or
// are still constructing the store. Storage failures are logged only.
func (s *Store) commit(ctx context.Context, next []Product) {
	s.products.Next(next)
	if err := storage.SaveJSON(ctx, s.storage, StorageKey, next); err != nil {
		s.logger.Printf("save products: %v", err)
	}
}

// ── reads ─────────────────────────────────────────────────────────────────────

func (s *Store) List() []Product {
	return cloneAll(s.products.Value())
}

func (s *Store) GetByID(id int) (Product, bool) {
	for _, p := range s.products.Value() {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Product{}, false
}

func (s *Store) ListByCategory(category Category) []Product {
	return s.where(func(p Product) bool { return p.Category == category })
}

// ListPetsBySubtype lists the pets of one subtype. An unknown subtype lists every pet.
func (s *Store) ListPetsBySubtype(subtype PetSubtype) []Product {
	if _, known := subtypeKeywords[subtype]; !known {
		return s.where(func(p Product) bool { return p.Kind() == KindPet })
	}
	return s.where(subtype.Matches)
}

// Search matches term case-insensitively against name and description.
func (s *Store) Search(term string) []Product {
	return s.Filter("", term)
}

// Filter combines the catalog browser's category selector and search box.
// An empty category or a blank term does not filter.
func (s *Store) Filter(category Category, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	return s.where(func(p Product) bool {
		if category != "" && p.Category != category {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	})
}

// NextID is the identifier the next Create will assign.
func (s *Store) NextID() int {
	return nextID(s.products.Value())
}

// Export renders the collection as indented JSON, for backups.
func (s *Store) Export() (string, error) {
	raw, err := json.MarshalIndent(s.products.Value(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Subscribe calls fn with the current collection and after every write.
func (s *Store) Subscribe(fn func([]Product)) func() {
	return s.products.Subscribe(func(ps []Product) { fn(cloneAll(ps)) })
}

// ── writes ────────────────────────────────────────────────────────────────────

// Create adds a product with id = max existing id + 1 (1 on an empty catalog).
func (s *Store) Create(ctx context.Context, in ProductInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.products.Value()
	p := in.product(nextID(current))
	if err := validate(p); err != nil {
		return Product{}, err
	}

	next := make([]Product, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, p)
	s.commit(ctx, next)
	s.logger.Printf("created product %d (%s)", p.ID, p.Name)
	return p.Clone(), nil
}

// Update merges patch into the product with the given id. The id itself never
// changes. found is false when no product has that id; the collection is then untouched.
func (s *Store) Update(ctx context.Context, id int, patch ProductPatch) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.products.Value()
	idx := indexOf(current, id)
	if idx < 0 {
		return Product{}, false, nil
	}

	updated, err := patch.apply(current[idx].Clone())
	if err != nil {
		return Product{}, true, err
	}
	updated.ID = id
	if err := validate(updated); err != nil {
		return Product{}, true, err
	}

	next := make([]Product, len(current))
	copy(next, current)
	next[idx] = updated
	s.commit(ctx, next)
	return updated.Clone(), true, nil
}

// Delete removes the product and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.products.Value()
	idx := indexOf(current, id)
	if idx < 0 {
		return false
	}

	next := make([]Product, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	s.commit(ctx, next)
	s.logger.Printf("deleted product %d", id)
	return true
}

// Reset drops the stored catalog and reloads the seed products.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.RemoveItem(ctx, StorageKey); err != nil {
		s.logger.Printf("remove products: %v", err)
	}
	if err := s.loadSeed(ctx); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *Store) where(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range s.products.Value() {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func nextID(products []Product) int {
	highest := 0
	for _, p := range products {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}

func indexOf(products []Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
