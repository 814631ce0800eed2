package catalog

import "context"

// Service defines the catalog operations the HTTP layer and the other
// stores depend on. *Store implements it.
type Service interface {
	List() []Product
	GetByID(id int) (Product, bool)
	ListByCategory(category Category) []Product
	ListPetsBySubtype(subtype PetSubtype) []Product
	Search(term string) []Product
	Filter(category Category, term string) []Product

	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id int, patch ProductPatch) (Product, bool, error)
	Delete(ctx context.Context, id int) bool
	Reset(ctx context.Context) error
	Export() (string, error)
}

var _ Service = (*Store)(nil)
