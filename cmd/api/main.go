package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"docgate/docs"
	"docgate/internal/auth"
	"docgate/internal/config"
	"docgate/internal/database"
	"docgate/internal/database/migration"
	handlers "docgate/internal/http/handler"
	"docgate/internal/http/middleware"
	"docgate/internal/logger"
	"docgate/internal/otel"
	"docgate/internal/policy"
	"docgate/internal/repository"
	"docgate/internal/repository/memory"
	"docgate/internal/repository/postgres"
	"docgate/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title docgate API
// @version 1.0
// @description Token-gated document metadata API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.AppConfig, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}
	log.Info().
		Str("algorithm", verifier.Algorithm()).
		Str("issuer", verifier.ExpectedIssuer()).
		Bool("strict_issuer", cfg.Auth.StrictIssuer).
		Msg("token verifier ready")

	docRepo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	docSvc := service.NewDocumentService(docRepo, policy.New(cfg.Auth.AdminRole))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "docgate",
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.RequestIDHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	authn := middleware.Authenticate(verifier, log, promMiddleware)
	handlers.RegisterRoutes(app, docRepo, docSvc, authn)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("store", cfg.Store.Driver).Msg("listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}

func newVerifier(c config.AuthConfig) (*auth.Verifier, error) {
	pem, err := c.PublicKey()
	if err != nil {
		return nil, err
	}
	return auth.NewVerifier(auth.Config{
		Algorithm:    c.Algorithm,
		PublicKeyPEM: pem,
		Issuer:       c.Issuer,
		StrictIssuer: c.StrictIssuer,
		Leeway:       c.Leeway(),
	})
}

// openStore builds the configured document repository. The returned func
// releases its resources.
func openStore(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (repository.DocumentRepository, func(), error) {
	switch cfg.Store.Driver {
	case "memory", "":
		repo := memory.NewDocumentMemory()
		if cfg.Store.Seed {
			n, err := repository.Seed(ctx, repo, memory.SeedDocuments())
			if err != nil {
				return nil, nil, fmt.Errorf("seed documents: %w", err)
			}
			log.Info().Int("documents", n).Msg("memory store seeded")
		}
		return repo, func() {}, nil

	case "postgres":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		repo := postgres.NewDocumentPostgres(db)
		if cfg.Store.Seed {
			n, err := repository.Seed(ctx, repo, memory.SeedDocuments())
			if err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("seed documents: %w", err)
			}
			log.Info().Int("documents", n).Msg("postgres store seeded")
		}
		return repo, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}
