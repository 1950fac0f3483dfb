package wire

import (
	"io"
	"os"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"
	"github.com/sevigo/repo-warden/internal/app"
	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/db"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/logger"
	"github.com/sevigo/repo-warden/internal/repomanager"
	"github.com/sevigo/repo-warden/internal/server"
	"github.com/sevigo/repo-warden/internal/server/handler"
	"github.com/sevigo/repo-warden/internal/storage"
	"github.com/sevigo/repo-warden/internal/workers"
)

var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	handler.NewWebhookHandler,
	logger.NewLogger,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	storage.NewQueue,
	repomanager.New,
	gitutil.NewClient,
	workers.NewDefaultRegistry,
	workers.NewPool,
	provideLoggerConfig,
	provideLogWriter,
	provideDBConfig,
	provideWorkerConfig,
	provideSQLDB,
	provideExecutorRegistry,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.LoggerConfig
}

func provideLogWriter(cfg *config.Config) io.Writer {
	switch cfg.LoggerConfig.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, _ := os.OpenFile("repo-warden.log", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		return f
	default:
		return os.Stdout
	}
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return cfg.Database
}

func provideWorkerConfig(cfg *config.Config) config.WorkerConfig {
	return cfg.Worker
}

func provideSQLDB(conn *db.DB) *sqlx.DB {
	return conn.DB
}

func provideExecutorRegistry(r *workers.Registry) core.ExecutorRegistry {
	return r
}
