package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	s := newTestStore(t, storage.NewMemory())
	h := NewHandler(s)
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	router.Route("/admin", h.RegisterAdminRoutes)
	return router, s
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeProducts(t *testing.T, rec *httptest.ResponseRecorder) []Product {
	t.Helper()
	var out []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_ListProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/catalog/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeProducts(t, rec), 28)

	rec = do(router, http.MethodGet, "/api/v1/catalog/products?category=alimentacion&q=gatos", "")
	assert.Equal(t, []int{4}, ids(decodeProducts(t, rec)))

	rec = do(router, http.MethodGet, "/api/v1/catalog/products?category=furniture", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CategoryAndPetPages(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/catalog/categories/juguetes", "")
	assert.Equal(t, []int{7, 8}, ids(decodeProducts(t, rec)))

	rec = do(router, http.MethodGet, "/api/v1/catalog/categories/muebles", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/catalog/pets/aves", "")
	assert.Equal(t, []int{116, 117, 118}, ids(decodeProducts(t, rec)))

	rec = do(router, http.MethodGet, "/api/v1/catalog/pets", "")
	assert.Len(t, decodeProducts(t, rec), 20)
}

func TestHandler_GetProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/catalog/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Golden Retriever Cachorro", p.Name)
	assert.Equal(t, KindPet, p.Kind())

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/catalog/products/404", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/catalog/products/abc", "").Code)
}

func TestHandler_AdminCRUD(t *testing.T) {
	router, s := newTestRouter(t)

	rec := do(router, http.MethodPost, "/admin/products", `{
		"name": "Arena para Gatos",
		"description": "Arena aglomerante sin perfume.",
		"price": "9.99",
		"image": "https://example.com/arena.jpg",
		"category": "higiene",
		"stock": 12
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 119, created.ID)
	assert.Equal(t, CategoryHygiene, created.Category)

	rec = do(router, http.MethodPut, "/admin/products/119", `{"id": 500, "stock": 3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 119, updated.ID)
	assert.Equal(t, 3, updated.Stock)
	_, exists := s.GetByID(500)
	assert.False(t, exists)

	rec = do(router, http.MethodPatch, "/admin/products/119", `{"on_sale": true, "sale_price": 15}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPut, "/admin/products/9999", `{"stock": 1}`).Code)

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, "/admin/products/119", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/admin/products/119", "").Code)
}

func TestHandler_ResetAndExport(t *testing.T) {
	router, s := newTestRouter(t)
	s.Delete(context.Background(), 1)

	rec := do(router, http.MethodPost, "/admin/products/reset", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeProducts(t, rec), 28)

	rec = do(router, http.MethodGet, "/admin/products/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "productos.json")
	assert.Len(t, decodeProducts(t, rec), 28)
}
