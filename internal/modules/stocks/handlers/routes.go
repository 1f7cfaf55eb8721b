package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the stock overview routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/stock/{ticker}", h.HandleGetStock)
}
