package admin

import (
	"context"
	"fmt"

	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
)

// Dashboard is the admin panel's summary.
type Dashboard struct {
	Users     int `json:"users"`
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`
}

type UserCounter interface {
	Counts(ctx context.Context) (total, customers int, err error)
}

type ProductLister interface {
	List() []catalog.Product
}

type OrderCounter interface {
	Count(ctx context.Context) (int, error)
}

// Service computes the dashboard from the stores that own each figure.
type Service struct {
	users    UserCounter
	products ProductLister
	orders   OrderCounter
}

func NewService(users UserCounter, products ProductLister, orders OrderCounter) *Service {
	return &Service{users: users, products: products, orders: orders}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	total, customers, err := s.users.Counts(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count users: %w", err)
	}
	orders, err := s.orders.Count(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count orders: %w", err)
	}
	return Dashboard{
		Users:     total,
		Customers: customers,
		Products:  len(s.products.List()),
		Orders:    orders,
	}, nil
}
