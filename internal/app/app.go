// Package app initializes and orchestrates the main components of the
// application: the HTTP intake server and the background worker pool.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/server"
	"github.com/sevigo/repo-warden/internal/storage"
	"github.com/sevigo/repo-warden/internal/workers"
)

// App holds the main application components. The CLI reaches into Store,
// Queue and Registry directly; the server binary runs Start/Stop.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    storage.Store
	Queue    core.TaskQueue
	Registry core.ExecutorRegistry

	pool   *workers.Pool
	server *server.Server
}

// NewApp wires the initialized components together.
func NewApp(cfg *config.Config, logger *slog.Logger, store storage.Store, queue core.TaskQueue, registry core.ExecutorRegistry, pool *workers.Pool, srv *server.Server) *App {
	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Queue:    queue,
		Registry: registry,
		pool:     pool,
		server:   srv,
	}
}

// Start launches the worker pool and then blocks serving HTTP.
func (a *App) Start(ctx context.Context) error {
	if err := a.Cfg.ValidateForServer(); err != nil {
		return err
	}

	a.Logger.Info("starting repo-warden",
		"server_port", a.Cfg.Server.Port,
		"max_workers", a.Cfg.Worker.MaxWorkers)

	a.pool.Start(ctx)
	return a.server.Start()
}

// Stop shuts down the application cleanly: the HTTP server first so no new
// work arrives, then the worker pool so in-flight tasks finish.
func (a *App) Stop() error {
	a.Logger.Info("shutting down repo-warden services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.pool.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.Logger.Info("repo-warden stopped successfully")
	return nil
}
