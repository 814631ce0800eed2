package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is one of the shop's five fixed product families.
type Category string

const (
	CategoryPet       Category = "pet"
	CategoryFood      Category = "food"
	CategoryAccessory Category = "accessory"
	CategoryToy       Category = "toy"
	CategoryHygiene   Category = "hygiene"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPet, CategoryFood, CategoryAccessory, CategoryToy, CategoryHygiene}

var categoryAliases = map[string]Category{
	"pet": CategoryPet, "pets": CategoryPet, "mascotas": CategoryPet,
	"food": CategoryFood, "alimentacion": CategoryFood, "alimentación": CategoryFood,
	"accessory": CategoryAccessory, "accessories": CategoryAccessory, "accesorios": CategoryAccessory,
	"toy": CategoryToy, "toys": CategoryToy, "juguetes": CategoryToy,
	"hygiene": CategoryHygiene, "higiene": CategoryHygiene,
}

// ParseCategory resolves a category name or one of the storefront's route slugs.
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

func (c Category) valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// PetProfile holds the attributes only live animals carry.
type PetProfile struct {
	Breed      string `json:"breed" yaml:"breed"`
	Age        string `json:"age" yaml:"age"`
	Sex        Sex    `json:"sex" yaml:"sex"`
	Size       Size   `json:"size" yaml:"size"`
	Vaccinated bool   `json:"vaccinated" yaml:"vaccinated"`
	Sterilized bool   `json:"sterilized" yaml:"sterilized"`
}

// Kind tags a product as a live pet or a regular good.
type Kind string

const (
	KindPet  Kind = "pet"
	KindGood Kind = "good"
)

// Product is an item of the catalog. A product is a pet exactly when it
// carries a PetProfile; that invariant is checked on every write.
type Product struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Category    Category         `json:"category"`
	Subcategory string           `json:"subcategory,omitempty"`
	Stock       int              `json:"stock"`
	OnSale      bool             `json:"on_sale,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Pet         *PetProfile      `json:"pet,omitempty"`
}

func (p Product) Kind() Kind {
	if p.Pet != nil {
		return KindPet
	}
	return KindGood
}

// AsPet narrows the product to its pet attributes.
func (p Product) AsPet() (PetProfile, bool) {
	if p.Pet == nil {
		return PetProfile{}, false
	}
	return *p.Pet, true
}

// EffectivePrice is the sale price while the product is on sale, the base price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale && p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}

// Clone returns a deep copy of p.
func (p Product) Clone() Product {
	if p.SalePrice != nil {
		sp := *p.SalePrice
		p.SalePrice = &sp
	}
	if p.Pet != nil {
		pet := *p.Pet
		p.Pet = &pet
	}
	return p
}

// ProductInput is a product without an identifier, as submitted by the admin form.
type ProductInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Category    Category         `json:"category"`
	Subcategory string           `json:"subcategory,omitempty"`
	Stock       int              `json:"stock"`
	OnSale      bool             `json:"on_sale,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Pet         *PetProfile      `json:"pet,omitempty"`
}

// NewPet builds the input for a live animal.
func NewPet(base ProductInput, profile PetProfile) ProductInput {
	base.Category = CategoryPet
	base.Pet = &profile
	return base
}

// NewGood builds the input for a non-animal product.
func NewGood(base ProductInput, category Category) ProductInput {
	base.Category = category
	base.Pet = nil
	return base
}

func (in ProductInput) product(id int) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Stock:       in.Stock,
		OnSale:      in.OnSale,
		SalePrice:   in.SalePrice,
		Pet:         in.Pet,
	}.Clone()
}

// ProductPatch carries the fields of a partial update. Nil fields are left as
// they are; ClearSalePrice removes the sale price and ends the sale.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Subcategory *string          `json:"subcategory,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	OnSale      *bool            `json:"on_sale,omitempty"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Pet         *PetProfile      `json:"pet,omitempty"`

	ClearSalePrice bool `json:"clear_sale_price,omitempty"`
}

func (patch ProductPatch) apply(p Product) (Product, error) {
	if patch.ClearSalePrice && patch.SalePrice != nil {
		return Product{}, fmt.Errorf("%w: sale_price and clear_sale_price are exclusive", ErrInvalidProduct)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Subcategory != nil {
		p.Subcategory = *patch.Subcategory
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.OnSale != nil {
		p.OnSale = *patch.OnSale
	}
	if patch.SalePrice != nil {
		sp := *patch.SalePrice
		p.SalePrice = &sp
	}
	if patch.ClearSalePrice {
		p.SalePrice = nil
		p.OnSale = false
	}
	if patch.Pet != nil {
		if p.Category != CategoryPet {
			return Product{}, fmt.Errorf("%w: only pets carry pet details", ErrInvalidProduct)
		}
		pet := *patch.Pet
		p.Pet = &pet
	}
	// moving a pet to another category turns it into a regular good
	if p.Category != CategoryPet {
		p.Pet = nil
	}
	return p, nil
}

var (
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidSalePrice   = errors.New("sale price must be lower than the base price")
	ErrPetProfileRequired = errors.New("pet products require breed, age, sex and size details")
)

func validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	if !p.Category.valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	}
	if p.Category == CategoryPet && p.Pet == nil {
		return ErrPetProfileRequired
	}
	if p.Category != CategoryPet && p.Pet != nil {
		return fmt.Errorf("%w: only pets carry pet details", ErrInvalidProduct)
	}
	if p.SalePrice != nil {
		if p.SalePrice.IsNegative() {
			return fmt.Errorf("%w: sale price cannot be negative", ErrInvalidProduct)
		}
		if p.OnSale && p.SalePrice.GreaterThanOrEqual(p.Price) {
			return ErrInvalidSalePrice
		}
	}
	return nil
}
