package api

import (
	"os"
	"path/filepath"

	"finagent/docs"
	"finagent/internal/api/handlers"
	"finagent/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg *config.ServerConfig,
	sessionMiddleware fiber.Handler,
	chatHandler *handlers.ChatHandler,
	uploadHandler *handlers.UploadHandler,
	transactionHandler *handlers.TransactionHandler,
	dashboardHandler *handlers.DashboardHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:8080",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: true,
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Static files (web dashboard)
	if webDir := findWebDir(cfg.WebDir, appLogger); webDir != "" {
		appLogger.Info("Serving web dashboard", zap.String("path", webDir))
		app.Static("/", webDir)
	} else {
		appLogger.Warn("Web directory not found, dashboard will not be served")
	}

	// API routes, all session-scoped
	api := app.Group("/api/v1", sessionMiddleware)

	api.Post("/chat", chatHandler.SendMessage)
	api.Get("/chat/history", chatHandler.History)

	api.Post("/uploads", uploadHandler.Upload)
	api.Get("/uploads/status", uploadHandler.Status)

	api.Get("/transactions", transactionHandler.List)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/summary", dashboardHandler.Summary)
	dashboard.Get("/timeseries", dashboardHandler.Timeseries)
	dashboard.Get("/comparison", dashboardHandler.Comparison)

	return app
}

// findWebDir probes the configured path and common fallbacks for the built
// dashboard assets.
func findWebDir(configured string, logger *zap.Logger) string {
	paths := []string{configured, "./web", "../web", "../../web"}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if fileExists(filepath.Join(path, "index.html")) {
			return path
		}
		logger.Debug("Tried web path", zap.String("path", path))
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
