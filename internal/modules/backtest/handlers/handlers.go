// Package handlers provides HTTP handlers for portfolio backtests.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aristath/backtester/internal/domain"
	"github.com/aristath/backtester/internal/modules/backtest"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds the request body of a backtest.
const maxBodyBytes = 1 << 20

// RunIDHeader carries the backtest run identifier on every response.
const RunIDHeader = "X-Backtest-ID"

// Runner executes validated backtests.
type Runner interface {
	RunWithID(ctx context.Context, runID string, req backtest.Request) (*backtest.Result, error)
}

// Handler handles backtest HTTP requests
type Handler struct {
	runner Runner
	log    zerolog.Logger
}

// NewHandler creates a new backtest handler
func NewHandler(runner Runner, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		log:    log.With().Str("handler", "backtest").Logger(),
	}
}

// HandleBacktest handles POST /backtest
func (h *Handler) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	w.Header().Set(RunIDHeader, runID)

	var body backtest.RequestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, runID, domain.InvalidRequest("invalid JSON body: %v", err))
		return
	}

	req, err := backtest.ParseRequest(body)
	if err != nil {
		h.writeError(w, runID, err)
		return
	}

	result, err := h.runner.RunWithID(r.Context(), runID, req)
	if err != nil {
		h.writeError(w, runID, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// errorResponse is the structured failure body.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Ticker string `json:"ticker,omitempty"`
}

// writeError maps the error kind to a status code and writes the structured body.
func (h *Handler) writeError(w http.ResponseWriter, runID string, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindInvalidRequest:
		status = http.StatusBadRequest
	case domain.KindDataUnavailable:
		status = http.StatusBadGateway
	}

	event := h.log.Warn()
	if status == http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).Str("run_id", runID).Str("kind", string(kind)).Int("status", status).Msg("Backtest failed")

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
