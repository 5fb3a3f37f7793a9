package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface. The readiness gate sits in front of
// every route, including unknown paths.
func NewRouter(h *GuestHandler, ready Readiness) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)                    // permissive CORS
	r.Use(RequireReady(ready))     // 503 while the store is down

	r.Get("/", h.Index)

	r.Route("/guests", func(r chi.Router) {
		r.Get("/", h.ListGuests)
		r.Post("/", h.CreateGuest)
		r.Get("/{id}", h.GetGuest)
	})

	r.NotFound(NotFound)

	return r
}
