package order

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/cart"
	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/google/uuid"
)

// Service defines checkout and order history.
type Service interface {
	// Checkout turns the current cart into a pending order for u and empties the cart.
	Checkout(ctx context.Context, u user.User, req CheckoutRequest) (*Order, error)

	// GetOrder retrieves an order by UUID.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// GetOrderByNumber retrieves an order by its human-readable number.
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	// ListForUser returns the purchase history of a user, newest first.
	ListForUser(ctx context.Context, userID int) ([]*Order, error)

	// ListAll returns every order, optionally filtered by status.
	ListAll(ctx context.Context, status string) ([]*Order, error)

	// UpdateStatus advances an order to a new lifecycle status.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)

	// Cancel cancels a pending or processing order on behalf of by, who
	// must own it or be an admin.
	Cancel(ctx context.Context, id string, by user.User) (*Order, error)

	Count(ctx context.Context) (int, error)
}

// Cart is the part of the cart store checkout consumes. Drain must keep the
// cart locked between handing it over and clearing it.
type Cart interface {
	Drain(ctx context.Context, fn func(cart.Cart) error) error
}

type service struct {
	repo   Repository
	cart   Cart
	now    func() time.Time
	logger *log.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, c Cart, logger *log.Logger) Service {
	return &service{repo: repo, cart: c, now: time.Now, logger: logger}
}

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *service) Checkout(ctx context.Context, u user.User, req CheckoutRequest) (*Order, error) {
	var o *Order
	err := s.cart.Drain(ctx, func(snapshot cart.Cart) error {
		if len(snapshot.Items) == 0 {
			return ErrEmptyCart
		}
		address := strings.TrimSpace(req.DeliveryAddress)
		if address == "" {
			address = strings.TrimSpace(u.Address)
		}
		if address == "" {
			return ErrAddressRequired
		}

		now := s.now().UTC()
		o = &Order{
			ID:              uuid.New(),
			Number:          generateOrderNumber(now),
			UserID:          u.ID,
			Items:           snapshot.Items,
			Total:           snapshot.Total,
			Count:           snapshot.Count,
			Status:          StatusPending,
			DeliveryAddress: address,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order %s placed by %s: %d units, total %s", o.Number, u.Email, o.Count, o.Total.StringFixed(2))
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, oid)
}

func (s *service) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

func (s *service) ListForUser(ctx context.Context, userID int) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context, status string) ([]*Order, error) {
	var st Status
	if status != "" {
		parsed, ok := ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		st = parsed
	}
	return s.repo.List(ctx, st)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	next, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, next)
}

func (s *service) Cancel(ctx context.Context, id string, by user.User) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != by.ID && by.Role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.transition(ctx, o, StatusCancelled)
}

func (s *service) transition(ctx context.Context, o *Order, next Status) (*Order, error) {
	if !canTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Printf("order %s is now %s", o.Number, next)
	return o, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
	orders, err := s.repo.List(ctx, "")
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// generateOrderNumber creates a human-readable order number: PED-YYYYMMDD-XXXX
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("PED-%s-%s", now.Format("20060102"), suffix)
}
