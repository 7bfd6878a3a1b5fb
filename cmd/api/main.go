package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/app"
	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/handlers"
	"alfredoptarigan/resume-matcher/internal/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize services", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close resources", zap.Error(err))
		}
	}()

	routes := handlers.Routes{
		Ingest:  handlers.NewIngestHandler(ctx, a.Pipeline, a.Source, a.Index, log),
		Analyze: handlers.NewAnalyzeHandler(a.Orchestrator, a.Index, cfg.Match.TopK, log),
		Resumes: handlers.NewResumeHandler(a.Index, a.Catalog, a.Storage, a, log),
		Upload:  handlers.NewUploadHandler(a.Storage, cfg.Resumes.MaxFileSize, log),
	}

	server := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Resumes.MaxFileSize) * 4,
		UnescapePath: true,
		ErrorHandler: customErrorHandler,
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	routes.Register(server.Group("/api"))
	server.Get("/metrics", adaptor.HTTPHandler(a.Metrics.Handler()))

	server.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/ingest",
				"POST /api/analyze",
				"POST /api/upload",
				"GET /api/resumes",
				"GET /api/resumes/:id",
				"GET /api/resumes/:id/pdf",
				"DELETE /api/resumes/:id",
			},
		})
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("resumes", cfg.Resumes.Path))

	if err := server.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
