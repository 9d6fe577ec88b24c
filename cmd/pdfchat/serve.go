package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"pdfchat/docs"
	"pdfchat/internal/ai"
	"pdfchat/internal/config"
	"pdfchat/internal/database"
	"pdfchat/internal/database/migration"
	handlers "pdfchat/internal/http/handler"
	"pdfchat/internal/http/middleware"
	"pdfchat/internal/metrics"
	"pdfchat/internal/otel"
	"pdfchat/internal/pdftext"
	"pdfchat/internal/rag"
	"pdfchat/internal/repository/postgres"
	"pdfchat/internal/service"
	appsession "pdfchat/internal/session"
	"pdfchat/internal/storage"
	"pdfchat/internal/websearch"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(true)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer flush(logger, "tracing", shutdownTracing)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			return err
		}
	}

	// a nil interface disables archiving
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
	} else {
		logger.Warn("object_storage_disabled", "component", "storage")
	}

	ragMetrics, err := metrics.NewRAG(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	pool, err := ants.NewPool(cfg.RAG.EmbeddingWorkers)
	if err != nil {
		return fmt.Errorf("failed to create embedding pool: %w", err)
	}
	defer pool.Release()

	sessionStorage, err := appsession.NewBadgerStorage(cfg.Session.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	defer sessionStorage.Close()
	sessions := appsession.NewStore(cfg.Session, sessionStorage)

	openAI := ai.NewOpenAI(cfg.OpenAI, ai.Options{
		BatchSize: cfg.RAG.EmbeddingBatchSize,
		Pool:      pool,
		Metrics:   ragMetrics,
	})
	index := rag.NewIndex(ragMetrics.SetLoadedDocuments)
	retriever := rag.NewRetriever(index, openAI, ragMetrics)

	userRepo := postgres.NewUserPostgres(db)
	pdfRepo := postgres.NewPDFPostgres(db)
	chatRepo := postgres.NewChatPostgres(db)

	authSvc := service.NewAuthService(userRepo, cfg.Admin)
	pdfSvc := service.NewPDFService(pdftext.NewExtractor(), openAI, index, objStore, pdfRepo, cfg.RAG, logger)
	chatSvc := service.NewChatService(index, retriever, openAI, websearch.New(cfg.Search, nil), chatRepo,
		service.ChatOptions{TopK: cfg.RAG.TopK, SearchResults: cfg.Search.MaxResults}, logger)
	adminSvc := service.NewAdminService(userRepo, pdfRepo, chatSvc, objStore, logger)

	app := fiber.New(fiber.Config{
		AppName:      "pdfchat",
		BodyLimit:    cfg.UploadMaxMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:       db,
		Sessions: sessions,
		Auth:     authSvc,
		PDF:      pdfSvc,
		Chat:     chatSvc,
		Admin:    adminSvc,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", "component", "http", "addr", ":"+cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_shutdown", "component", "http")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func flush(logger *slog.Logger, name string, fn otel.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("shutdown_failed", "component", name, "error_message", err.Error())
	}
}
