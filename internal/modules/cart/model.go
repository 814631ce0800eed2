package cart

import (
	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line. It keeps a snapshot of the product it refers to so
// the cart can be rendered without the catalog.
type Item struct {
	ID        uuid.UUID       `json:"id"`
	ProductID int             `json:"product_id"`
	Product   catalog.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// UnitPrice is the product's effective price.
func (it Item) UnitPrice() decimal.Decimal {
	return it.Product.EffectivePrice()
}

// Cart is the ordered list of lines plus the aggregates derived from them.
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// recalculate derives every subtotal, the total and the count from the items.
func (c Cart) recalculate() Cart {
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		it := &c.Items[i]
		it.Subtotal = it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.Subtotal)
		count += it.Quantity
	}
	c.Total = total
	c.Count = count
	return c
}

func (c Cart) clone() Cart {
	items := make([]Item, len(c.Items))
	for i, it := range c.Items {
		it.Product = it.Product.Clone()
		items[i] = it
	}
	c.Items = items
	return c
}

func (c Cart) indexOf(productID int) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func empty() Cart {
	return Cart{Items: []Item{}, Total: decimal.Zero}
}
