package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the public, read-only catalog views.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts)              // GET /api/v1/catalog/products?category=food&q=gato
		r.Get("/products/{id}", h.getProduct)           // GET /api/v1/catalog/products/{id}
		r.Get("/categories", h.listCategories)          // GET /api/v1/catalog/categories
		r.Get("/categories/{category}", h.listCategory) // GET /api/v1/catalog/categories/juguetes
		r.Get("/pets", h.listPets)                      // GET /api/v1/catalog/pets
		r.Get("/pets/{subtype}", h.listPets)            // GET /api/v1/catalog/pets/perros
	})
}

// RegisterAdminRoutes mounts product management. The caller guards r.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Patch("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Post("/products/reset", h.resetProducts)
	r.Get("/products/export", h.exportProducts)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	var category Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := ParseCategory(raw)
		if !ok {
			respond(w, http.StatusBadRequest, map[string]string{"error": "unknown category " + raw})
			return
		}
		category = c
	}
	respond(w, http.StatusOK, h.service.Filter(category, r.URL.Query().Get("q")))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, found := h.service.GetByID(id)
	if !found {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, Categories)
}

func (h *Handler) listCategory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "category")
	category, ok := ParseCategory(raw)
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": "unknown category " + raw})
		return
	}
	respond(w, http.StatusOK, h.service.ListByCategory(category))
}

// listPets serves both the all-pets page and the per-subtype pages; an
// unknown subtype falls back to every pet.
func (h *Handler) listPets(w http.ResponseWriter, r *http.Request) {
	subtype, _ := ParsePetSubtype(chi.URLParam(r, "subtype"))
	respond(w, http.StatusOK, h.service.ListPetsBySubtype(subtype))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if c, ok := ParseCategory(string(in.Category)); ok {
		in.Category = c
	}
	p, err := h.service.Create(r.Context(), in)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, p)
}

// updateProduct ignores any id in the body: the path decides which product changes.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var patch ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if patch.Category != nil {
		if c, ok := ParseCategory(string(*patch.Category)); ok {
			patch.Category = &c
		}
	}
	p, found, err := h.service.Update(r.Context(), id, patch)
	if !found {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if !h.service.Delete(r.Context(), id) {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, h.service.List())
}

func (h *Handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Export()
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="productos.json"`)
	w.Write([]byte(out))
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidProduct),
		errors.Is(err, ErrInvalidSalePrice),
		errors.Is(err, ErrPetProfileRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
