package cart

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/georgemunganga/mascotas-backend/internal/modules/catalog"
	"github.com/go-chi/chi/v5"
)

// ProductFinder resolves the product a cart intent refers to.
type ProductFinder interface {
	GetByID(id int) (catalog.Product, bool)
}

// Handler exposes cart HTTP endpoints.
type Handler struct {
	store    *Store
	products ProductFinder
}

func NewHandler(store *Store, products ProductFinder) *Handler {
	return &Handler{store: store, products: products}
}

// RegisterRoutes mounts the cart. The badge endpoints are public; everything
// else goes through guard.
func (h *Handler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/count", h.count)              // GET /api/v1/cart/count
		r.Get("/count/stream", h.streamCount) // GET /api/v1/cart/count/stream (server-sent events)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Get("/", h.getCart)                         // GET    /api/v1/cart
			r.Delete("/", h.clearCart)                    // DELETE /api/v1/cart
			r.Post("/items", h.addItem)                   // POST   /api/v1/cart/items
			r.Get("/items/{product_id}", h.getItem)       // GET    /api/v1/cart/items/{product_id}
			r.Put("/items/{product_id}", h.setQuantity)   // PUT    /api/v1/cart/items/{product_id}
			r.Delete("/items/{product_id}", h.removeItem) // DELETE /api/v1/cart/items/{product_id}
		})
	})
}

// AddItemRequest is the payload of an add-to-cart intent.
type AddItemRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// SetQuantityRequest is the payload of a quantity change.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	respond(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	req := AddItemRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, found := h.products.GetByID(req.ProductID)
	if !found {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err := h.store.Add(r.Context(), p, req.Quantity); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"product_id": id,
		"in_cart":    h.store.Contains(id),
		"quantity":   h.store.QuantityOf(id),
	})
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if !h.store.Contains(id) {
		respond(w, http.StatusNotFound, map[string]string{"error": "product not in cart"})
		return
	}
	h.store.SetQuantity(r.Context(), id, req.Quantity)
	respond(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.store.Remove(r.Context(), id)
	respond(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]int{"count": h.store.Snapshot().Count})
}

// streamCount pushes the item count as server-sent events until the client goes away.
func (h *Handler) streamCount(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for n := range h.store.ItemCount(r.Context()) {
		fmt.Fprintf(w, "event: count\ndata: %d\n\n", n)
		flusher.Flush()
	}
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "product_id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
