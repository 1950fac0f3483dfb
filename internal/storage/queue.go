package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sevigo/repo-warden/internal/core"
)

// TaskStore is the durable task queue consumed by the worker runtime.
// Ordering is guaranteed only in the order entries are written; once
// multiple workers race to lease, consumption order is unspecified.
type TaskStore interface {
	EnqueueTask(ctx context.Context, executor string, payload core.TaskPayload) error
	LeaseNextTask(ctx context.Context) (*core.Task, error)
	CompleteTask(ctx context.Context, taskID int64) error
	FailTask(ctx context.Context, taskID int64, reason string, maxAttempts int) error
	CountTasks(ctx context.Context) (map[core.TaskStatus]int, error)
	ListRecentTasks(ctx context.Context, limit int) ([]*core.Task, error)
}

// EnqueueTask persists a queue entry for later asynchronous execution.
func (s *postgresStore) EnqueueTask(ctx context.Context, executor string, payload core.TaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode task payload: %w", err)
	}
	query := `INSERT INTO worker_tasks (executor, payload) VALUES ($1, $2)`
	if _, err := s.db.ExecContext(ctx, query, executor, body); err != nil {
		return fmt.Errorf("failed to enqueue task for %s: %w", executor, err)
	}
	return nil
}

// LeaseNextTask claims the oldest pending task. SKIP LOCKED keeps
// concurrent workers from blocking each other; (nil, nil) means the queue
// is empty.
func (s *postgresStore) LeaseNextTask(ctx context.Context) (*core.Task, error) {
	query := `
		UPDATE worker_tasks
		SET status = 'leased', leased_at = now(), attempts = attempts + 1
		WHERE id = (
			SELECT id FROM worker_tasks
			WHERE status = 'pending'
			ORDER BY id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, executor, payload, status, attempts, last_error, created_at, leased_at`

	var (
		task core.Task
		body []byte
	)
	row := s.db.QueryRowContext(ctx, query)
	err := row.Scan(&task.ID, &task.Executor, &body, &task.Status, &task.Attempts,
		&task.LastError, &task.CreatedAt, &task.LeasedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lease task: %w", err)
	}
	if err := json.Unmarshal(body, &task.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload of task %d: %w", task.ID, err)
	}
	return &task, nil
}

func (s *postgresStore) CompleteTask(ctx context.Context, taskID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE worker_tasks SET status = 'done' WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to complete task %d: %w", taskID, err)
	}
	return nil
}

// FailTask records the failure and either re-queues the task or marks it
// permanently failed once attempts reach maxAttempts.
func (s *postgresStore) FailTask(ctx context.Context, taskID int64, reason string, maxAttempts int) error {
	query := `
		UPDATE worker_tasks
		SET status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
		    last_error = $2
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, taskID, reason, maxAttempts); err != nil {
		return fmt.Errorf("failed to mark task %d failed: %w", taskID, err)
	}
	return nil
}

func (s *postgresStore) CountTasks(ctx context.Context) (map[core.TaskStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM worker_tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[core.TaskStatus]int)
	for rows.Next() {
		var (
			status core.TaskStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *postgresStore) ListRecentTasks(ctx context.Context, limit int) ([]*core.Task, error) {
	query := `
		SELECT id, executor, payload, status, attempts, last_error, created_at, leased_at
		FROM worker_tasks
		ORDER BY id DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*core.Task
	for rows.Next() {
		var (
			task core.Task
			body []byte
		)
		if err := rows.Scan(&task.ID, &task.Executor, &body, &task.Status, &task.Attempts,
			&task.LastError, &task.CreatedAt, &task.LeasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if err := json.Unmarshal(body, &task.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload of task %d: %w", task.ID, err)
		}
		tasks = append(tasks, &task)
	}
	return tasks, rows.Err()
}

// Queue adapts the store to the narrow core.TaskQueue interface consumed by
// the reparse dispatcher and the webhook handler.
type Queue struct {
	store Store
}

// NewQueue wraps a Store as a core.TaskQueue.
func NewQueue(store Store) core.TaskQueue {
	return &Queue{store: store}
}

func (q *Queue) Enqueue(ctx context.Context, executor string, payload core.TaskPayload) error {
	return q.store.EnqueueTask(ctx, executor, payload)
}
