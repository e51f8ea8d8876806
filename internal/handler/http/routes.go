package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the control API router.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip, h.withHashing)

	router.Get("/api/version", h.getVersion)
	router.Get("/api/status", h.getStatus)
	router.Post("/api/sync", h.triggerSync)

	router.MethodNotAllowed(methodNotAllowed(router))

	return router
}
