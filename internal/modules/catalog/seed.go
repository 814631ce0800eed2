package catalog

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedProduct struct {
	ID          int         `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Price       float64     `yaml:"price"`
	Image       string      `yaml:"image"`
	Category    string      `yaml:"category"`
	Subcategory string      `yaml:"subcategory"`
	Stock       int         `yaml:"stock"`
	OnSale      bool        `yaml:"on_sale"`
	SalePrice   *float64    `yaml:"sale_price"`
	Pet         *PetProfile `yaml:"pet"`
}

// SeedProducts parses the embedded starter catalog.
func SeedProducts() ([]Product, error) {
	return parseSeed(seedYAML)
}

func parseSeed(raw []byte) ([]Product, error) {
	var rows []seedProduct
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	products := make([]Product, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	for _, row := range rows {
		category, ok := ParseCategory(row.Category)
		if !ok {
			return nil, fmt.Errorf("seed product %d: unknown category %q", row.ID, row.Category)
		}
		if seen[row.ID] {
			return nil, fmt.Errorf("seed product %d: duplicate id", row.ID)
		}
		seen[row.ID] = true

		p := Product{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Price:       decimal.NewFromFloat(row.Price),
			Image:       row.Image,
			Category:    category,
			Subcategory: row.Subcategory,
			Stock:       row.Stock,
			OnSale:      row.OnSale,
			Pet:         row.Pet,
		}
		if row.SalePrice != nil {
			sp := decimal.NewFromFloat(*row.SalePrice)
			p.SalePrice = &sp
		}
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("seed product %d: %w", row.ID, err)
		}
		products = append(products, p)
	}
	return products, nil
}
