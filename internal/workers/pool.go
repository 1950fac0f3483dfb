package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// Pool manages a set of worker goroutines that drain the durable task
// queue and execute the named operation for each entry.
type Pool struct {
	store    storage.Store
	registry core.ExecutorRegistry
	cfg      config.WorkerConfig
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a Pool. Workers are not started until Start is called.
func NewPool(store storage.Store, registry core.ExecutorRegistry, cfg config.WorkerConfig, logger *slog.Logger) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Pool{
		store:    store,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := range p.cfg.MaxWorkers {
		p.wg.Add(1)
		go p.startWorker(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.logger.Info("stopping worker pool and waiting for tasks to finish")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("all workers have finished")
}

func (p *Pool) startWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	p.logger.Info("starting task worker", "id", workerID)

	for {
		task, err := p.store.LeaseNextTask(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("failed to lease task", "worker_id", workerID, "error", err)
		}
		if task == nil {
			select {
			case <-ctx.Done():
				p.logger.Info("shutting down task worker", "id", workerID)
				return
			case <-time.After(p.cfg.PollInterval):
			}
			continue
		}

		p.processTask(ctx, workerID, task)
	}
	p.logger.Info("shutting down task worker", "id", workerID)
}

func (p *Pool) processTask(ctx context.Context, workerID int, task *core.Task) {
	p.logger.Info("worker processing task",
		"worker_id", workerID,
		"task_id", task.ID,
		"executor", task.Executor,
		"commit_id", task.Payload.CommitID,
	)

	if err := p.runTask(ctx, task); err != nil {
		p.logger.Error("task failed",
			"task_id", task.ID, "executor", task.Executor, "error", err)
		if failErr := p.store.FailTask(ctx, task.ID, err.Error(), p.cfg.MaxAttempts); failErr != nil {
			p.logger.Error("failed to record task failure", "task_id", task.ID, "error", failErr)
		}
		return
	}

	if err := p.store.CompleteTask(ctx, task.ID); err != nil {
		p.logger.Error("failed to mark task done", "task_id", task.ID, "error", err)
	}
}

func (p *Pool) runTask(ctx context.Context, task *core.Task) error {
	exec, ok := p.registry.Executor(task.Executor)
	if !ok {
		return fmt.Errorf("no executor registered under %q", task.Executor)
	}

	commit, err := p.store.GetCommit(ctx, task.Payload.CommitID)
	if err != nil {
		return err
	}
	if commit == nil {
		return fmt.Errorf("commit %d no longer exists", task.Payload.CommitID)
	}

	repo, err := p.store.GetRepositoryByID(ctx, commit.RepositoryID)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("repository %d no longer exists", commit.RepositoryID)
	}

	return exec.Run(ctx, repo, commit)
}
