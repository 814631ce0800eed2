package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	mounts  []func(chi.Router)
}

// NewHandler serves the dashboard plus every management route set in mounts
// under /api/v1/admin.
func NewHandler(service *Service, mounts ...func(chi.Router)) *Handler {
	return &Handler{service: service, mounts: mounts}
}

func (h *Handler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(guard)
		r.Get("/dashboard", h.dashboard) // GET /api/v1/admin/dashboard
		for _, mount := range h.mounts {
			mount(r)
		}
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, d)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
