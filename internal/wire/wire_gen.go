// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/repo-warden/internal/app"
	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/db"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/logger"
	"github.com/sevigo/repo-warden/internal/repomanager"
	"github.com/sevigo/repo-warden/internal/server"
	"github.com/sevigo/repo-warden/internal/server/handler"
	"github.com/sevigo/repo-warden/internal/storage"
	"github.com/sevigo/repo-warden/internal/workers"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := provideLoggerConfig(cfg)
	logWriter := provideLogWriter(cfg)
	slogLogger := logger.NewLogger(loggerConfig, logWriter)

	// Database (migrations run during connect)
	dbConfig := provideDBConfig(cfg)
	dbConn, dbCleanup, err := db.NewDatabase(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Storage and task queue
	store := storage.NewStore(provideSQLDB(dbConn))
	queue := storage.NewQueue(store)

	// Git client and mirror manager
	gitClient := gitutil.NewClient(slogLogger)
	repoManager := repomanager.New(cfg, gitClient, slogLogger)

	// Executor registry
	registryImpl, err := workers.NewDefaultRegistry(cfg, store, repoManager, gitClient, slogLogger)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to build executor registry: %w", err)
	}
	registry := provideExecutorRegistry(registryImpl)

	// Worker pool
	pool := workers.NewPool(store, registry, provideWorkerConfig(cfg), slogLogger)

	// HTTP server
	webhookHandler := handler.NewWebhookHandler(cfg, store, queue, registry, slogLogger)
	srv := server.NewServer(cfg, webhookHandler, slogLogger)

	// App
	application := app.NewApp(cfg, slogLogger, store, queue, registry, pool, srv)

	cleanup := func() {
		dbCleanup()
	}

	return application, cleanup, nil
}
