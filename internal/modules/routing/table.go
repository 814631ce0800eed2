package routing

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

var (
	shoppers = []user.Role{user.RoleAdmin, user.RoleCustomer}
	admins   = []user.Role{user.RoleAdmin}
)

// Table is the storefront's navigable surface.
var Table = []Route{
	{Path: "/catalogo", View: "catalog", API: "/api/v1/catalog/products"},
	{Path: "/mascotas", View: "pets", API: "/api/v1/catalog/pets"},
	{Path: "/mascotas/perros", View: "pets-dog", API: "/api/v1/catalog/pets/dog"},
	{Path: "/mascotas/gatos", View: "pets-cat", API: "/api/v1/catalog/pets/cat"},
	{Path: "/mascotas/conejos", View: "pets-rabbit", API: "/api/v1/catalog/pets/rabbit"},
	{Path: "/mascotas/peces", View: "pets-fish", API: "/api/v1/catalog/pets/fish"},
	{Path: "/mascotas/iguanas", View: "pets-reptile", API: "/api/v1/catalog/pets/reptile"},
	{Path: "/mascotas/aves", View: "pets-bird", API: "/api/v1/catalog/pets/bird"},
	{Path: "/alimentacion", View: "food", API: "/api/v1/catalog/categories/food"},
	{Path: "/accesorios", View: "accessories", API: "/api/v1/catalog/categories/accessory"},
	{Path: "/juguetes", View: "toys", API: "/api/v1/catalog/categories/toy"},
	{Path: "/higiene", View: "hygiene", API: "/api/v1/catalog/categories/hygiene"},
	{Path: "/producto/:id", View: "product-detail", API: "/api/v1/catalog/products/:id"},
	{Path: LoginPath, View: "login", API: "/api/v1/auth/login"},
	{Path: "/register", View: "register", API: "/api/v1/auth/register"},
	{Path: "/carrito", View: "cart", Roles: shoppers, API: "/api/v1/cart"},
	{Path: "/pedidos", View: "order-history", Roles: shoppers, API: "/api/v1/orders"},
	{Path: "/admin", View: "admin-dashboard", Roles: admins, API: "/api/v1/admin/dashboard"},
	{Path: "/admin/productos/nuevo", View: "product-create", Roles: admins, API: "/api/v1/admin/products"},
	{Path: "/admin/productos/editar/:id", View: "product-edit", Roles: admins, API: "/api/v1/admin/products/:id"},
	{Path: AccessDeniedPath, View: "access-denied"},
}

// Matcher resolves view paths against a route table on a chi routing tree.
// The tree is built once; chi's Find walks it without an *http.Request.
type Matcher struct {
	mux      *chi.Mux
	routes   map[string]Route // by chi pattern
	fallback Route
}

// NewMatcher registers every route of table. Parameters written as
// ":name" become chi's "{name}".
func NewMatcher(table []Route) *Matcher {
	m := &Matcher{mux: chi.NewRouter(), routes: make(map[string]Route, len(table))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range table {
		pattern := chiPattern(rt.Path)
		m.mux.Get(pattern, noop)
		m.routes[pattern] = rt
		if rt.Path == FallbackPath {
			m.fallback = rt
		}
	}
	return m
}

// Resolve matches path and applies the guard for role. The empty path and
// unmatched paths land on the catalog listing; only the latter are flagged
// as a fallback.
func (m *Matcher) Resolve(path string, role user.Role) Resolution {
	res := Resolution{Requested: path}
	clean := normalize(path)

	rctx := chi.NewRouteContext()
	route, ok := m.routes[m.mux.Find(rctx, http.MethodGet, clean)]
	if ok {
		res.Route = route
		for i, key := range rctx.URLParams.Keys {
			if res.Params == nil {
				res.Params = make(map[string]string, len(rctx.URLParams.Keys))
			}
			res.Params[key] = rctx.URLParams.Values[i]
		}
	} else {
		res.Route = m.fallback
		res.Fallback = clean != "/"
	}
	res.Decision = Decide(res.Route.Roles, role)
	return res
}

// Resolve matches path against table and applies the guard for role.
func Resolve(table []Route, path string, role user.Role) Resolution {
	return NewMatcher(table).Resolve(path, role)
}

func chiPattern(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			segs[i] = "{" + seg[1:] + "}"
		}
	}
	return "/" + strings.Join(segs, "/")
}

// normalize drops the query and fragment and any trailing slash.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return "/" + strings.Trim(path, "/")
}
