package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	var calls int32
	handler := newTestHandler(&calls)

	router := chi.NewRouter()
	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")

	for _, path := range []string{"/backtest", "/api/backtest"} {
		req := httptest.NewRequest("POST", path, strings.NewReader(`{"portfolio":[]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	req := httptest.NewRequest("GET", "/backtest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
