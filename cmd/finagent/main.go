package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"finagent/internal/api"
	"finagent/internal/api/handlers"
	"finagent/internal/chatbackend"
	"finagent/internal/service"
	"finagent/internal/session"
	"finagent/internal/store"
	"finagent/pkg/auth"
	"finagent/pkg/config"
	"finagent/pkg/logger"
	"finagent/pkg/middleware"
	"finagent/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// @title FinAgent API
// @version 1.0
// @description Personal finance dashboard and chat assistant backend.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@finagent.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinAgent service")

	ctx := context.Background()

	// Initialize transaction store client
	var storeClient store.Client
	var pool *pgxpool.Pool
	switch cfg.Store.Backend {
	case store.BackendPostgres:
		pool, err = postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		storeClient = store.NewPostgresClient(pool, cfg.Store.Table, appLogger)
	case store.BackendHTTP:
		storeClient, err = store.NewRESTClient(&cfg.Store, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize store client", zap.Error(err))
		}
	default:
		appLogger.Fatal("Unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	// Initialize services
	fetcher := service.NewFetcher(storeClient, cfg.Store.CacheTTL, appLogger)
	watcher := service.NewWatcher(fetcher, cfg.Watcher.MaxAttempts, cfg.Watcher.Interval, appLogger)
	uploader := service.NewUploader(&cfg.Extractor, fetcher, watcher, appLogger)
	dashboard := service.NewDashboard(fetcher, appLogger)

	backend, err := chatbackend.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize chat backend", zap.Error(err))
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}
	chat := service.NewChat(backend, appLogger)

	// Initialize sessions
	tokens := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)
	sessions := session.NewManager(cfg.Session.TTL, appLogger)
	defer sessions.Close()

	sessionMiddleware := middleware.SessionMiddleware(sessions, tokens, cfg.Session.TTL, appLogger)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chat, appLogger)
	uploadHandler := handlers.NewUploadHandler(uploader, watcher, appLogger)
	transactionHandler := handlers.NewTransactionHandler(fetcher, appLogger)
	dashboardHandler := handlers.NewDashboardHandler(dashboard, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Server, sessionMiddleware, chatHandler, uploadHandler, transactionHandler, dashboardHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
