package auth

import (
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
)

// Session is the authenticated identity the store currently holds.
type Session struct {
	User     user.User `json:"user"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// AuthError is a failed login or registration. Message is meant for the end user.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

var (
	ErrInvalidCredentials = &AuthError{Code: "invalid_credentials", Message: "Credenciales inválidas"}
	ErrUserNotFound       = &AuthError{Code: "user_not_found", Message: "Usuario no encontrado"}
	ErrPasswordMismatch   = &AuthError{Code: "password_mismatch", Message: "Las contraseñas no coinciden"}
	ErrEmailTaken         = &AuthError{Code: "email_taken", Message: "El email ya está registrado"}
	ErrMissingFields      = &AuthError{Code: "missing_fields", Message: "Nombre, email y contraseña son obligatorios"}
	ErrAccountDisabled    = &AuthError{Code: "account_disabled", Message: "La cuenta está desactivada"}
	// ErrSuperseded is returned by a pending login or registration that a
	// logout or a newer login invalidated before it completed.
	ErrSuperseded = &AuthError{Code: "superseded", Message: "La sesión cambió antes de completar la operación"}
)

// RegisterRequest carries the sign-up form. New accounts are always customers.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

// Permission is a capability granted by a role.
type Permission string

const (
	PermViewPanel      Permission = "view_panel"
	PermManageProducts Permission = "manage_products"
	PermManageUsers    Permission = "manage_users"
	PermPurchase       Permission = "purchase"
	PermViewHistory    Permission = "view_history"
)

// Permissions is a fixed set of capabilities.
type Permissions []Permission

func (ps Permissions) Has(p Permission) bool {
	for _, granted := range ps {
		if granted == p {
			return true
		}
	}
	return false
}

var permissionTable = map[user.Role]Permissions{
	user.RoleAdmin:    {PermViewPanel, PermManageProducts, PermManageUsers, PermPurchase, PermViewHistory},
	user.RoleCustomer: {PermPurchase, PermViewHistory},
}

// PermissionsFor returns the capabilities of role. Guests and unknown roles get none.
func PermissionsFor(role user.Role) Permissions {
	ps := permissionTable[role]
	out := make(Permissions, len(ps))
	copy(out, ps)
	return out
}
