// Package repomanager maintains the local bare mirrors the VCS parsers
// read from.
package repomanager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/util"
)

// Manager hands out up-to-date local mirror paths for tracked repositories.
type Manager interface {
	// EnsureMirror clones the repository mirror if it does not exist yet,
	// fetches otherwise, and returns the local path.
	EnsureMirror(ctx context.Context, repo *core.Repository) (string, error)

	// MirrorPath returns the local path without touching the mirror.
	MirrorPath(repo *core.Repository) string
}

type manager struct {
	cfg       *config.Config
	gitClient *gitutil.Client
	logger    *slog.Logger

	// one mutex per callsign so concurrent workers never race a
	// clone/fetch on the same mirror
	repoMux sync.Map
}

// New creates a new mirror Manager.
func New(cfg *config.Config, gitClient *gitutil.Client, logger *slog.Logger) Manager {
	return &manager{
		cfg:       cfg,
		gitClient: gitClient,
		logger:    logger,
	}
}

func (m *manager) MirrorPath(repo *core.Repository) string {
	return filepath.Join(m.cfg.MirrorPath, util.MirrorDirName(repo.Callsign)+".git")
}

func (m *manager) EnsureMirror(ctx context.Context, repo *core.Repository) (string, error) {
	val, _ := m.repoMux.LoadOrStore(repo.Callsign, &sync.Mutex{})
	mux, ok := val.(*sync.Mutex)
	if !ok {
		return "", fmt.Errorf("internal error: failed to assert mutex type")
	}
	mux.Lock()
	defer mux.Unlock()

	path := m.MirrorPath(repo)
	exists := true
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat mirror %s: %w", path, err)
		}
		exists = false
	}

	if !exists {
		m.logger.Info("mirror not found, performing initial clone", "repo", repo.Callsign, "vcs", repo.VCS)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return "", fmt.Errorf("failed to create mirror parent directory: %w", err)
		}
		if err := m.clone(ctx, repo, path); err != nil {
			// A half-finished clone would poison every later update.
			_ = os.RemoveAll(path)
			return "", err
		}
		return path, nil
	}

	if err := m.update(ctx, repo, path); err != nil {
		return "", err
	}
	return path, nil
}

func (m *manager) clone(ctx context.Context, repo *core.Repository, path string) error {
	switch repo.VCS {
	case core.VCSGit:
		return m.gitClient.CloneMirror(ctx, repo.CloneURL, path)
	case core.VCSMercurial:
		cmd := exec.CommandContext(ctx, "hg", "clone", "-U", repo.CloneURL, path)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("hg clone failed: %s: %w", strings.TrimSpace(string(out)), err)
		}
		return nil
	default:
		// Subversion parsers talk to the remote URL directly.
		return fmt.Errorf("%w: %s", ErrNoLocalMirror, repo.VCS)
	}
}

func (m *manager) update(ctx context.Context, repo *core.Repository, path string) error {
	switch repo.VCS {
	case core.VCSGit:
		return m.gitClient.Fetch(ctx, path)
	case core.VCSMercurial:
		cmd := exec.CommandContext(ctx, "hg", "pull", "-R", path)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("hg pull failed: %s: %w", strings.TrimSpace(string(out)), err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNoLocalMirror, repo.VCS)
	}
}
