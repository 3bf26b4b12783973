package gateway

import (
	"net/http"
)

// Router wraps http.ServeMux with an ordered middleware chain.
type Router struct {
	mux         *http.ServeMux
	middlewares []func(http.Handler) http.Handler
}

// NewRouter creates a router around mux. A nil mux gets a fresh one.
func NewRouter(mux *http.ServeMux) *Router {
	if mux == nil {
		mux = http.NewServeMux()
	}
	return &Router{mux: mux}
}

// Mux returns the underlying http.ServeMux
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// Use appends middleware. The first one registered runs outermost.
func (r *Router) Use(mw ...func(http.Handler) http.Handler) {
	r.middlewares = append(r.middlewares, mw...)
}

// Handle registers a handler for the given pattern
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for the given pattern
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

// Handler returns the mux wrapped in the middleware chain.
func (r *Router) Handler() http.Handler {
	var h http.Handler = r.mux
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h
}
