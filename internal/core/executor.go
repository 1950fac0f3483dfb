package core

import "context"

//go:generate mockgen -destination=../../mocks/mock_executor.go -package=mocks . Executor,TaskQueue

// Executor is a single unit of post-commit work: it performs exactly one
// operation (parse message, parse change, evaluate herald rules, link
// owners) against one commit.
type Executor interface {
	// Name returns the stable identifier persisted into queue entries.
	Name() string

	// Run executes the operation against the given commit. It returns an
	// error if the operation fails; executors are expected to be
	// idempotent per commit so failed or interrupted work can be re-run.
	Run(ctx context.Context, repo *Repository, commit *Commit) error
}

// ExecutorRegistry resolves operations to executors. VCS-specific
// operations (message, change) are keyed by the repository's VCS kind;
// an unregistered (vcs, operation) pair is not an error, the operation is
// simply unavailable for that VCS.
type ExecutorRegistry interface {
	// Resolve maps an operation for the given VCS kind to an executor
	// name. ok is false when no executor is registered for the pair.
	Resolve(vcs VCSKind, op Operation) (name string, ok bool)

	// Executor returns the executor registered under name.
	Executor(name string) (Executor, bool)
}

// TaskQueue persists work for asynchronous execution by the worker runtime.
type TaskQueue interface {
	Enqueue(ctx context.Context, executor string, payload TaskPayload) error
}

// ConfirmFunc asks the operator to approve a destructive action. The CLI
// supplies an interactive prompt; non-interactive callers supply a
// constant answer.
type ConfirmFunc func(prompt string) bool
