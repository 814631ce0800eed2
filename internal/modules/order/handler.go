package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/mascotas-backend/internal/modules/auth"
	"github.com/go-chi/chi/v5"
)

// Identity yields the session orders are placed and listed for.
type Identity interface {
	Current() (*auth.Session, bool)
}

// Handler exposes order HTTP endpoints.
type Handler struct {
	service  Service
	identity Identity
}

func NewHandler(service Service, identity Identity) *Handler {
	return &Handler{service: service, identity: identity}
}

// RegisterRoutes mounts the shopper endpoints behind guard.
func (h *Handler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(guard)
		r.Post("/", h.checkout)                  // POST /api/v1/orders
		r.Get("/", h.listMine)                   // GET  /api/v1/orders
		r.Get("/{id}", h.getOrder)               // GET  /api/v1/orders/{id}
		r.Get("/number/{number}", h.getByNumber) // GET  /api/v1/orders/number/{number}
		r.Post("/{id}/cancel", h.cancelOrder)    // POST /api/v1/orders/{id}/cancel
	})
}

// RegisterAdminRoutes mounts order management. The caller guards r.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.listAll)                    // GET   .../orders?status=pending
	r.Patch("/orders/{id}/status", h.updateStatus) // PATCH .../orders/{id}/status
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.identity.Current()
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	var req CheckoutRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	o, err := h.service.Checkout(r.Context(), sess.User, req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.identity.Current()
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	orders, err := h.service.ListForUser(r.Context(), sess.User.ID)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	h.respondOwned(w, o, err)
}

func (h *Handler) getByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrderByNumber(r.Context(), chi.URLParam(r, "number"))
	h.respondOwned(w, o, err)
}

// respondOwned hides other users' orders from non-admins.
func (h *Handler) respondOwned(w http.ResponseWriter, o *Order, err error) {
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	sess, ok := h.identity.Current()
	if !ok || (o.UserID != sess.User.ID && !auth.PermissionsFor(sess.User.Role).Has(auth.PermViewPanel)) {
		respond(w, http.StatusNotFound, map[string]string{"error": ErrNotFound.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.identity.Current()
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}
	o, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), sess.User)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrAddressRequired), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
