// Package httpkit provides transport sugar shared by service modules
package httpkit

import (
	"net/http"

	phttp "prosefix/internal/platform/net/http"
)

// Router aliases the platform router seam so modules need one import
type Router = phttp.Router

// GetJSON mounts a body-less JSON handler under GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// PostJSON mounts a typed JSON handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, h)
}
