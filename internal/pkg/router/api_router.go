package router

import (
	"strconv"
	"time"

	"github.com/getkin/kin-openapi/routers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medihub/medihub/app/controllers"
	apiv1 "github.com/medihub/medihub/internal/api/v1"
	"github.com/medihub/medihub/internal/pkg/auth"
	"github.com/medihub/medihub/internal/pkg/middleware"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

const DefaultReportRateLimit = 10

// Dependencies is everything the routers need from main
type Dependencies struct {
	Controllers  *controllers.Controllers
	Issuer       *auth.TokenIssuer
	OpenAPI      routers.Router // nil disables request validation
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]HealthCheck

	// LimiterStorage backs the intake rate limiter; nil keeps counters in memory.
	LimiterStorage  fiber.Storage
	ReportRateLimit int // requests per profile per minute
}

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", middleware.BearerAuth(h.deps.Issuer))
	if h.deps.OpenAPI != nil {
		api.Use(middleware.OpenAPIValidator(h.deps.OpenAPI))
	}
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "MediHub moderation API",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer(h.deps.Controllers)
	apiv1.RegisterHandlers(v1, apiServer, h.intakeLimiter())
}

func (h ApiRouter) intakeLimiter() fiber.Handler {
	max := h.deps.ReportRateLimit
	if max <= 0 {
		max = DefaultReportRateLimit
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    h.deps.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := usercontext.GetProfileID(c); id > 0 {
				return "report-intake:profile:" + strconv.FormatUint(uint64(id), 10)
			}
			return "report-intake:ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "신고 요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
			})
		},
	})
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
