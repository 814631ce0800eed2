package auth

import (
	"context"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
)

// Service defines the session operations consumed by the HTTP layer and the route guard.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Logout(ctx context.Context)
	Current() (*Session, bool)
	IsAuthenticated() bool
	Role() user.Role
	Permissions() Permissions
	HasPermission(p Permission) bool
	Subscribe(fn func(*Session)) func()
	AccountChanged(ctx context.Context, u *user.User)
}

var _ Service = (*Store)(nil)
