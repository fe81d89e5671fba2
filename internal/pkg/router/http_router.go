package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether one backing service is reachable
type HealthCheck func(ctx context.Context) error

// HttpRouter serves the operational endpoints outside the versioned API
type HttpRouter struct {
	gatherer prometheus.Gatherer
	checks   map[string]HealthCheck
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", h.handleHealth)

	if h.gatherer != nil {
		app.Get("/metrics/prometheus", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

func (h HttpRouter) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	result := fiber.Map{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			result[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	return c.Status(status).JSON(fiber.Map{"status": status == fiber.StatusOK, "checks": result})
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{gatherer: deps.Gatherer, checks: deps.HealthChecks}
}
