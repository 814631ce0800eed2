package order

import (
	"errors"
	"strings"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statusAliases = map[string]Status{
	"pending": StatusPending, "pendiente": StatusPending,
	"processing": StatusProcessing, "procesando": StatusProcessing,
	"shipped": StatusShipped, "enviado": StatusShipped,
	"delivered": StatusDelivered, "entregado": StatusDelivered,
	"cancelled": StatusCancelled, "canceled": StatusCancelled, "cancelado": StatusCancelled,
}

// ParseStatus accepts english and spanish status names in any case.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAddressRequired   = errors.New("delivery address is required")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("order belongs to another user")
)

// Order is a confirmed purchase. Its lines are the cart lines at checkout time.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	UserID          int             `json:"user_id"`
	Items           []cart.Item     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Count           int             `json:"count"`
	Status          Status          `json:"status"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (o *Order) clone() *Order {
	c := *o
	c.Items = make([]cart.Item, len(o.Items))
	for i, it := range o.Items {
		it.Product = it.Product.Clone()
		c.Items[i] = it
	}
	return &c
}

// CheckoutRequest is the payload for confirming the cart. The user's own
// address is used when DeliveryAddress is empty.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
