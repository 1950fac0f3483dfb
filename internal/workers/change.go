package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/repomanager"
	"github.com/sevigo/repo-warden/internal/storage"
)

// GitChangeParser records the paths a git commit touched, diffed against
// its first parent.
type GitChangeParser struct {
	Store   storage.Store
	Mirrors repomanager.Manager
	Git     *gitutil.Client
	Logger  *slog.Logger
}

func (p *GitChangeParser) Name() string { return ExecGitChange }

func (p *GitChangeParser) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	path, err := p.Mirrors.EnsureMirror(ctx, repo)
	if err != nil {
		return err
	}

	added, modified, deleted, err := p.Git.ChangedPaths(path, commit.Identifier)
	if err != nil {
		return err
	}

	var paths []core.PathChange
	for _, f := range added {
		paths = append(paths, core.PathChange{CommitID: commit.ID, Path: f, Change: core.ChangeAdded})
	}
	for _, f := range modified {
		paths = append(paths, core.PathChange{CommitID: commit.ID, Path: f, Change: core.ChangeModified})
	}
	for _, f := range deleted {
		paths = append(paths, core.PathChange{CommitID: commit.ID, Path: f, Change: core.ChangeDeleted})
	}
	return p.Store.ReplaceCommitPaths(ctx, commit.ID, paths)
}

// HgChangeParser records the paths a Mercurial changeset touched, via
// hg status.
type HgChangeParser struct {
	Store   storage.Store
	Mirrors repomanager.Manager
	Logger  *slog.Logger
}

func (p *HgChangeParser) Name() string { return ExecHgChange }

func (p *HgChangeParser) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	path, err := p.Mirrors.EnsureMirror(ctx, repo)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "hg", "status", "-R", path, "--change", commit.Identifier)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("hg status failed for %s: %w", commit.Identifier, err)
	}

	paths, err := parseHgStatus(commit.ID, string(out))
	if err != nil {
		return err
	}
	return p.Store.ReplaceCommitPaths(ctx, commit.ID, paths)
}

func parseHgStatus(commitID int64, out string) ([]core.PathChange, error) {
	var paths []core.PathChange
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		if len(line) < 3 {
			return nil, fmt.Errorf("unexpected hg status line %q", line)
		}
		change := ""
		switch line[0] {
		case 'A':
			change = core.ChangeAdded
		case 'M':
			change = core.ChangeModified
		case 'R', '!':
			change = core.ChangeDeleted
		default:
			// Untracked/ignored markers never appear with --change.
			return nil, fmt.Errorf("unexpected hg status marker %q", line[0])
		}
		paths = append(paths, core.PathChange{CommitID: commitID, Path: line[2:], Change: change})
	}
	return paths, nil
}
