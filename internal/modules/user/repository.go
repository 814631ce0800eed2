package user

import "context"

// Repository defines the interface for user data storage.
type Repository interface {
	// Create assigns an ID when u.ID is zero. Fails with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetActive(ctx context.Context, id int, active bool) error
}
