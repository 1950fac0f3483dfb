// Package storage implements the Postgres-backed persistence layer.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/repo-warden/internal/core"
)

// Store defines the interface for all database operations.
type Store interface {
	// Repositories.
	CreateRepository(ctx context.Context, repo *core.Repository) error
	GetRepositoryByID(ctx context.Context, id int64) (*core.Repository, error)
	GetRepositoryByCallsign(ctx context.Context, callsign string) (*core.Repository, error)
	GetRepositoryByName(ctx context.Context, name string) (*core.Repository, error)
	GetAllRepositories(ctx context.Context) ([]*core.Repository, error)

	// Commits.
	CreateCommit(ctx context.Context, commit *core.Commit) error
	GetCommit(ctx context.Context, id int64) (*core.Commit, error)
	GetCommitByIdentifier(ctx context.Context, repositoryID int64, identifier string) (*core.Commit, error)
	ListCommitsSince(ctx context.Context, repositoryID int64, minEpoch int64) ([]*core.Commit, error)

	// Parse results.
	UpdateCommitMessage(ctx context.Context, commit *core.Commit) error
	ReplaceCommitPaths(ctx context.Context, commitID int64, paths []core.PathChange) error
	GetCommitPaths(ctx context.Context, commitID int64) ([]core.PathChange, error)

	// Herald and owners.
	RecordHeraldAudit(ctx context.Context, commitID int64, ruleName, action string) error
	ListPackagePaths(ctx context.Context, repositoryID int64) ([]core.PackagePath, error)
	ReplaceCommitPackages(ctx context.Context, commitID int64, packageIDs []int64) error

	TaskStore
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store backed by Postgres.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// CreateRepository inserts a repository record. The callsign must be unique.
func (s *postgresStore) CreateRepository(ctx context.Context, repo *core.Repository) error {
	query := `
		INSERT INTO repositories (callsign, name, vcs, clone_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`
	now := time.Now()
	if err := s.db.QueryRowContext(ctx, query, repo.Callsign, repo.Name, repo.VCS, repo.CloneURL, now).Scan(&repo.ID); err != nil {
		return fmt.Errorf("failed to create repository %q: %w", repo.Callsign, err)
	}
	repo.CreatedAt = now
	repo.UpdatedAt = now
	return nil
}

func (s *postgresStore) GetRepositoryByID(ctx context.Context, id int64) (*core.Repository, error) {
	return s.getRepository(ctx, `SELECT * FROM repositories WHERE id = $1`, id)
}

func (s *postgresStore) GetRepositoryByCallsign(ctx context.Context, callsign string) (*core.Repository, error) {
	return s.getRepository(ctx, `SELECT * FROM repositories WHERE callsign = $1`, callsign)
}

func (s *postgresStore) GetRepositoryByName(ctx context.Context, name string) (*core.Repository, error) {
	return s.getRepository(ctx, `SELECT * FROM repositories WHERE name = $1`, name)
}

// getRepository returns (nil, nil) when no row matches; callers decide
// whether a missing repository is an error.
func (s *postgresStore) getRepository(ctx context.Context, query string, arg any) (*core.Repository, error) {
	var repo core.Repository
	if err := s.db.GetContext(ctx, &repo, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query repository: %w", err)
	}
	return &repo, nil
}

func (s *postgresStore) GetAllRepositories(ctx context.Context) ([]*core.Repository, error) {
	var repos []*core.Repository
	if err := s.db.SelectContext(ctx, &repos, `SELECT * FROM repositories ORDER BY callsign`); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// CreateCommit inserts a commit record, ignoring duplicates so repeated
// push deliveries stay idempotent.
func (s *postgresStore) CreateCommit(ctx context.Context, commit *core.Commit) error {
	query := `
		INSERT INTO commits (repository_id, identifier, epoch, author_name, author_email, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (repository_id, identifier) DO UPDATE SET epoch = EXCLUDED.epoch
		RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		commit.RepositoryID, commit.Identifier, commit.Epoch,
		commit.AuthorName, commit.AuthorEmail, commit.Summary,
	).Scan(&commit.ID)
	if err != nil {
		return fmt.Errorf("failed to create commit %q: %w", commit.Identifier, err)
	}
	return nil
}

func (s *postgresStore) GetCommit(ctx context.Context, id int64) (*core.Commit, error) {
	var commit core.Commit
	if err := s.db.GetContext(ctx, &commit, `SELECT * FROM commits WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query commit %d: %w", id, err)
	}
	return &commit, nil
}

func (s *postgresStore) GetCommitByIdentifier(ctx context.Context, repositoryID int64, identifier string) (*core.Commit, error) {
	var commit core.Commit
	query := `SELECT * FROM commits WHERE repository_id = $1 AND identifier = $2`
	if err := s.db.GetContext(ctx, &commit, query, repositoryID, identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query commit %q: %w", identifier, err)
	}
	return &commit, nil
}

// ListCommitsSince returns commits in import order, optionally filtered to
// those with epoch strictly greater than minEpoch.
func (s *postgresStore) ListCommitsSince(ctx context.Context, repositoryID int64, minEpoch int64) ([]*core.Commit, error) {
	var commits []*core.Commit
	query := `SELECT * FROM commits WHERE repository_id = $1 AND epoch > $2 ORDER BY epoch, id`
	if err := s.db.SelectContext(ctx, &commits, query, repositoryID, minEpoch); err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return commits, nil
}

// UpdateCommitMessage persists the fields the message parser extracted.
func (s *postgresStore) UpdateCommitMessage(ctx context.Context, commit *core.Commit) error {
	query := `
		UPDATE commits
		SET author_name = $2, author_email = $3, summary = $4, epoch = $5, message_parsed = TRUE
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query,
		commit.ID, commit.AuthorName, commit.AuthorEmail, commit.Summary, commit.Epoch); err != nil {
		return fmt.Errorf("failed to update commit message fields: %w", err)
	}
	return nil
}

// ReplaceCommitPaths rewrites the changed-path set for a commit in a single
// transaction so a re-run never leaves stale rows behind.
func (s *postgresStore) ReplaceCommitPaths(ctx context.Context, commitID int64, paths []core.PathChange) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commit_paths WHERE commit_id = $1`, commitID); err != nil {
		return fmt.Errorf("failed to clear commit paths: %w", err)
	}
	for _, p := range paths {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO commit_paths (commit_id, path, change) VALUES ($1, $2, $3)`,
			commitID, p.Path, p.Change); err != nil {
			return fmt.Errorf("failed to insert commit path %q: %w", p.Path, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE commits SET change_parsed = TRUE WHERE id = $1`, commitID); err != nil {
		return fmt.Errorf("failed to mark change parsed: %w", err)
	}
	return tx.Commit()
}

func (s *postgresStore) GetCommitPaths(ctx context.Context, commitID int64) ([]core.PathChange, error) {
	var paths []core.PathChange
	query := `SELECT commit_id, path, change FROM commit_paths WHERE commit_id = $1 ORDER BY path`
	if err := s.db.SelectContext(ctx, &paths, query, commitID); err != nil {
		return nil, fmt.Errorf("failed to list commit paths: %w", err)
	}
	return paths, nil
}

// RecordHeraldAudit records a rule match. Re-running herald for a commit
// upserts rather than duplicating audit rows.
func (s *postgresStore) RecordHeraldAudit(ctx context.Context, commitID int64, ruleName, action string) error {
	query := `
		INSERT INTO herald_audits (commit_id, rule_name, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (commit_id, rule_name) DO UPDATE SET action = EXCLUDED.action`
	if _, err := s.db.ExecContext(ctx, query, commitID, ruleName, action); err != nil {
		return fmt.Errorf("failed to record herald audit: %w", err)
	}
	return nil
}

func (s *postgresStore) ListPackagePaths(ctx context.Context, repositoryID int64) ([]core.PackagePath, error) {
	var paths []core.PackagePath
	query := `
		SELECT pp.package_id, p.name, pp.repository_id, pp.path_prefix
		FROM package_paths pp
		JOIN packages p ON p.id = pp.package_id
		WHERE pp.repository_id = $1
		ORDER BY pp.path_prefix`
	if err := s.db.SelectContext(ctx, &paths, query, repositoryID); err != nil {
		return nil, fmt.Errorf("failed to list package paths: %w", err)
	}
	return paths, nil
}

// ReplaceCommitPackages deletes the existing commit/package relations and
// writes the new set. This is the destructive step behind the reparse
// confirmation prompt.
func (s *postgresStore) ReplaceCommitPackages(ctx context.Context, commitID int64, packageIDs []int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commit_packages WHERE commit_id = $1`, commitID); err != nil {
		return fmt.Errorf("failed to clear commit packages: %w", err)
	}
	for _, pkgID := range packageIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO commit_packages (commit_id, package_id) VALUES ($1, $2)`,
			commitID, pkgID); err != nil {
			return fmt.Errorf("failed to link commit to package %d: %w", pkgID, err)
		}
	}
	return tx.Commit()
}
