package routing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler lets the front end resolve a view path before navigating to it.
type Handler struct {
	roles   RoleSource
	table   []Route
	matcher *Matcher
}

func NewHandler(roles RoleSource, table []Route) *Handler {
	return &Handler{roles: roles, table: table, matcher: NewMatcher(table)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/navigation", func(r chi.Router) {
		r.Get("/", h.resolve)          // GET /api/v1/navigation?path=/carrito
		r.Get("/routes", h.listRoutes) // GET /api/v1/navigation/routes
	})
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.matcher.Resolve(r.URL.Query().Get("path"), h.roles.Role()))
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.table)
}

// NotFound answers unmatched paths and points the client at the catalog listing.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Location", FallbackPath)
	respond(w, http.StatusNotFound, map[string]string{"error": "not found", "redirect": FallbackPath})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
