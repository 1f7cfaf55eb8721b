package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the backtest routes on r.
// POST /backtest is the original path; the same handler is mounted under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/backtest", h.HandleBacktest)
	r.Post("/api/backtest", h.HandleBacktest)
}
