package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/medihub/medihub/app/controllers"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/auth"
	"github.com/medihub/medihub/internal/pkg/cache"
	"github.com/medihub/medihub/internal/pkg/database"
	"github.com/medihub/medihub/internal/pkg/env"
	"github.com/medihub/medihub/internal/pkg/evidence"
	"github.com/medihub/medihub/internal/pkg/jobqueue"
	"github.com/medihub/medihub/internal/pkg/mail"
	"github.com/medihub/medihub/internal/pkg/metrics"
	"github.com/medihub/medihub/internal/pkg/middleware"
	"github.com/medihub/medihub/internal/pkg/moderation"
	"github.com/medihub/medihub/internal/pkg/router"
	"github.com/medihub/medihub/internal/pkg/security"
)

const (
	detailCacheTTL = 60 * time.Second
	tokenTTL       = 12 * time.Hour
	confirmTTL     = 5 * time.Minute
)

func main() {
	app, manager := NewApplication()

	if err := manager.Start(); err != nil {
		log.Fatalf("job queue: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down...")
		manager.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/medihub to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}
	specPath := basePath + "public/docs/v1/openapi.yml"

	// metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// secrets
	issuer, err := auth.NewTokenIssuer(env.GetEnv("JWT_SECRET", ""), tokenTTL)
	if err != nil {
		log.Fatalf("JWT_SECRET: %v", err)
	}
	confirm, err := security.NewConfirmSigner(env.GetEnv("CONFIRM_TOKEN_SECRET", ""), confirmTTL)
	if err != nil {
		log.Fatalf("CONFIRM_TOKEN_SECRET: %v", err)
	}

	// repositories
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalFactory().GetRepositories()

	// job queue
	redisClient := cache.GetClient()
	queue := jobqueue.NewQueue(redisClient, env.GetEnvInt("JOBQUEUE_WORKERS", 3))
	queue.SetMetrics(m)

	opts := []moderation.Option{
		moderation.WithDetailCache(moderation.NewRedisDetailCache(redisClient, detailCacheTTL)),
		moderation.WithNotifier(jobqueue.NewQueueNotifier(queue)),
		moderation.WithMetrics(m),
	}
	if store := setupEvidenceStore(); store != nil {
		opts = append(opts, moderation.WithEvidenceStore(store))
	}
	svc := moderation.NewService(repos, confirm, opts...)

	var mailer mail.Mailer
	if smtp := mail.NewSMTPMailerFromEnv(); smtp != nil {
		mailer = smtp
	}
	queue.Register(jobqueue.JobTypeModerationNotify, jobqueue.NewNotifyProcessor(repos.Notification, repos.Profile, mailer).Process)
	queue.Register(jobqueue.JobTypeSanctionExpirySweep, jobqueue.NewExpiryProcessor(svc).Process)

	manager := jobqueue.NewManager(queue,
		env.GetEnv("SANCTION_SWEEP_CRON", jobqueue.DefaultSweepSchedule),
		env.GetEnvInt("SANCTION_SWEEP_BATCH", moderation.DefaultExpiryBatch),
	)

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "MediHub",
		BodyLimit: 12 * 1024 * 1024, // evidence files are capped at 10 MiB
	})

	// recovery and logging
	app.Use(recover.New(), requestid.New(), logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(m.Middleware())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: specPath,
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	deps := router.Dependencies{
		Controllers: controllers.InitializeControllers(svc, repos, issuer),
		Issuer:      issuer,
		Gatherer:    registry,
		HealthChecks: map[string]router.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := database.GetDB().DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
		LimiterStorage: redisstorage.New(redisstorage.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnvInt("CACHE_PORT", 6379),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: env.GetEnvInt("LIMITER_CACHE_DB", 1),
		}),
		ReportRateLimit: env.GetEnvInt("REPORT_RATE_LIMIT", router.DefaultReportRateLimit),
	}
	if env.GetEnvBool("OPENAPI_VALIDATE", true) {
		openAPIRouter, err := middleware.LoadOpenAPIRouter(specPath)
		if err != nil {
			log.Fatalf("openapi: %v", err)
		}
		deps.OpenAPI = openAPIRouter
	}

	// ROUTER
	router.InstallRouter(app, deps)

	return app, manager
}

// setupEvidenceStore returns nil when uploads are disabled or the bucket is unreachable.
func setupEvidenceStore() moderation.EvidenceStore {
	cfg, err := evidence.LoadConfig()
	if err != nil {
		log.Fatalf("evidence: %v", err)
	}
	if !cfg.IsEnabled() {
		log.Println("Evidence storage disabled, uploads will be rejected")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := evidence.NewClient(ctx, cfg)
	if err != nil {
		log.Printf("Warning: evidence storage unavailable: %v", err)
		return nil
	}
	return client
}
