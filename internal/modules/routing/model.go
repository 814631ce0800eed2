package routing

import "github.com/georgemunganga/mascotas-backend/internal/modules/user"

// Paths of the views the guard redirects to.
const (
	LoginPath        = "/login"
	AccessDeniedPath = "/access-denied"
	FallbackPath     = "/catalogo"
)

// Route is one navigable view of the storefront.
type Route struct {
	Path  string      `json:"path"` // segments starting with ':' are parameters
	View  string      `json:"view"`
	Roles []user.Role `json:"roles,omitempty"` // empty means public
	API   string      `json:"api,omitempty"`   // endpoint the view reads from
}

// Decision is the outcome of the guard for one navigation.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Resolution is a path resolved against the route table and checked by the guard.
type Resolution struct {
	Requested string            `json:"requested"`
	Route     Route             `json:"route"`
	Params    map[string]string `json:"params,omitempty"`
	Fallback  bool              `json:"fallback"` // unmatched path sent to the catalog
	Decision
}
