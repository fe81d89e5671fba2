package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medihub/medihub/app/controllers"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/auth"
	"github.com/medihub/medihub/internal/pkg/metrics"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

func TestHttpRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
	}{
		{
			name: "all healthy",
			checks: map[string]HealthCheck{
				"database": func(ctx context.Context) error { return nil },
				"redis":    func(ctx context.Context) error { return nil },
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"database": func(ctx context.Context) error { return nil },
				"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: fiber.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			NewHttpRouter(Dependencies{HealthChecks: tt.checks}).InstallRouter(app)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				Status bool              `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus == fiber.StatusOK, body.Status)
			assert.Len(t, body.Checks, len(tt.checks))
		})
	}
}

func TestHttpRouter_PrometheusEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.ObserveReport("review")

	app := fiber.New()
	NewHttpRouter(Dependencies{Gatherer: registry}).InstallRouter(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics/prometheus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "medihub_")
}

func TestHttpRouter_NoGatherer(t *testing.T) {
	app := fiber.New()
	NewHttpRouter(Dependencies{}).InstallRouter(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics/prometheus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestApiRouter_Ping(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("router-test-secret", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	InstallRouter(app, Dependencies{
		Controllers: controllers.NewControllers(nil, &repository.Repositories{}, issuer),
		Issuer:      issuer,
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// admin routes stay closed to anonymous callers
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/admin/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestApiRouter_IntakeLimiter(t *testing.T) {
	r := NewApiRouter(Dependencies{ReportRateLimit: 2})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{ProfileID: 7, IsLoggedIn: true})
		return c.Next()
	})
	app.Post("/reports", r.intakeLimiter(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/reports", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "too_many_requests", body["error"])
}
