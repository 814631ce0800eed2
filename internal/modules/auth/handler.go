package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", h.login)       // POST /api/v1/auth/login
		r.Post("/register", h.register) // POST /api/v1/auth/register
		r.Post("/logout", h.logout)     // POST /api/v1/auth/logout
		r.Get("/session", h.session)    // GET  /api/v1/auth/session
	})
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the caller's session, authenticated or not.
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Role          user.Role   `json:"role"`
	Permissions   Permissions `json:"permissions"`
	User          *user.User  `json:"user,omitempty"`
	Token         string      `json:"token,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, describe(sess))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sess, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, describe(sess))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	respond(w, http.StatusOK, describe(nil))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.service.Current()
	respond(w, http.StatusOK, describe(sess))
}

func describe(sess *Session) SessionResponse {
	if sess == nil {
		return SessionResponse{Role: user.RoleGuest, Permissions: PermissionsFor(user.RoleGuest)}
	}
	u := sess.User
	return SessionResponse{
		Authenticated: true,
		Role:          u.Role,
		Permissions:   PermissionsFor(u.Role),
		User:          &u,
		Token:         sess.Token,
	}
}

func respondError(w http.ResponseWriter, err error) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		respond(w, statusFor(authErr), map[string]string{"error": authErr.Message, "code": authErr.Code})
		return
	}
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusRequestTimeout
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err *AuthError) int {
	switch err {
	case ErrInvalidCredentials, ErrUserNotFound:
		return http.StatusUnauthorized
	case ErrAccountDisabled:
		return http.StatusForbidden
	case ErrEmailTaken, ErrSuperseded:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
