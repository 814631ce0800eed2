package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for user-related business logic.
type Service interface {
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	// SetActive enables or disables an account. Disabled accounts cannot log in.
	SetActive(ctx context.Context, id int, active bool) (*User, error)
	Counts(ctx context.Context) (total, customers int, err error)
}

// ChangeListener is told about every account the service modifies.
type ChangeListener func(ctx context.Context, u *User)

type service struct {
	repo      Repository
	logger    *log.Logger
	listeners []ChangeListener
}

// NewService creates a new user service. listeners run after each change,
// in order.
func NewService(repo Repository, logger *log.Logger, listeners ...ChangeListener) Service {
	return &service{repo: repo, logger: logger, listeners: listeners}
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) GetUser(ctx context.Context, id int) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetActive(ctx context.Context, id int, active bool) (*User, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	state := "disabled"
	if active {
		state = "enabled"
	}
	s.logger.Printf("user %d (%s) %s", u.ID, u.Email, state)
	for _, notify := range s.listeners {
		cp := *u
		notify(ctx, &cp)
	}
	return u, nil
}

func (s *service) Counts(ctx context.Context) (int, int, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	customers := 0
	for _, u := range users {
		if u.Role == RoleCustomer {
			customers++
		}
	}
	return len(users), customers, nil
}

// SeedAccount describes a demo account installed at start-up.
type SeedAccount struct {
	User     User
	Password string
}

// DefaultSeed mirrors the shop's demo accounts.
func DefaultSeed() []SeedAccount {
	return []SeedAccount{
		{
			User: User{
				FirstName: "Admin", LastName: "Sistema", Email: "admin@tienda.com",
				Phone: "123456789", Address: "Calle Principal 123",
				Role: RoleAdmin, Active: true,
				RegisteredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			Password: "admin123",
		},
		{
			User: User{
				FirstName: "Cliente", LastName: "Ejemplo", Email: "cliente@ejemplo.com",
				Phone: "987654321", Address: "Avenida Secundaria 456",
				Role: RoleCustomer, Active: true,
				RegisteredAt: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			},
			Password: "cliente123",
		},
	}
}

// Seed creates every account whose email is not registered yet.
func Seed(ctx context.Context, repo Repository, accounts []SeedAccount) error {
	for _, a := range accounts {
		_, err := repo.GetByEmail(ctx, a.User.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := a.User
		u.PasswordHash = string(hash)
		if err := repo.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	return nil
}
