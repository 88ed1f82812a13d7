package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(_ context.Context) error { return s.err }

func TestHealthHandler_Health(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(stubPinger{}, "1.0.0")
	app.Get("/health", h.Health)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "1.0.0", result.Version)
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("storage answering", func(t *testing.T) {
		app := fiber.New()
		h := NewHealthHandler(stubPinger{}, "1.0.0")
		app.Get("/ready", h.Ready)

		req := httptest.NewRequest("GET", "/ready", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "ready", result.Status)
	})

	t.Run("storage down", func(t *testing.T) {
		app := fiber.New()
		h := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, "1.0.0")
		app.Get("/ready", h.Ready)

		req := httptest.NewRequest("GET", "/ready", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}
