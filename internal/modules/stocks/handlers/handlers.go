// Package handlers provides HTTP handlers for stock overviews.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/backtester/internal/domain"
	"github.com/aristath/backtester/internal/modules/stocks"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OverviewService builds stock overviews.
type OverviewService interface {
	GetOverview(ctx context.Context, ticker string) (*stocks.Overview, error)
}

// Handler handles stock overview HTTP requests
type Handler struct {
	service OverviewService
	log     zerolog.Logger
}

// NewHandler creates a new stock overview handler
func NewHandler(service OverviewService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "stocks").Logger(),
	}
}

// HandleGetStock handles GET /api/stock/{ticker}
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	overview, err := h.service.GetOverview(r.Context(), ticker)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Ticker string `json:"ticker,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindInvalidRequest:
		status = http.StatusBadRequest
	case domain.KindDataUnavailable:
		status = http.StatusBadGateway
	}

	h.log.Warn().Err(err).Str("kind", string(kind)).Int("status", status).Msg("Stock overview failed")

	h.writeJSON(w, status, errorResponse{
		Error:  err.Error(),
		Kind:   string(kind),
		Ticker: domain.TickerOf(err),
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
