// Package gitutil provides read access to local git mirrors.
package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Client handles interacting with Git repositories.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// CommitInfo is the commit metadata extracted by the message parser.
type CommitInfo struct {
	AuthorName  string
	AuthorEmail string
	Epoch       int64
	Message     string
}

// CloneMirror creates a bare mirror of repoURL at path using the git CLI.
func (c *Client) CloneMirror(ctx context.Context, repoURL, path string) error {
	c.Logger.InfoContext(ctx, "cloning repository mirror", "url", repoURL, "path", path)
	cmd := exec.CommandContext(ctx, "git", "clone", "--mirror", repoURL, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone --mirror failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Fetch updates a mirror from its origin. Transient failures are retried
// with exponential backoff.
func (c *Client) Fetch(ctx context.Context, path string) error {
	const maxRetries = 3
	const baseDelay = 2 * time.Second

	var err error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			delay := baseDelay * time.Duration(1<<(i-1))
			c.Logger.WarnContext(ctx, "git fetch failed, retrying",
				"attempt", i, "max_retries", maxRetries, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		cmd := exec.CommandContext(ctx, "git", "fetch", "origin", "--prune")
		cmd.Dir = path
		if out, cmdErr := cmd.CombinedOutput(); cmdErr != nil {
			err = fmt.Errorf("git fetch failed: %s: %w", strings.TrimSpace(string(out)), cmdErr)
			continue
		}
		return nil
	}
	return err
}

// CommitInfo loads the author, timestamp and full message of a commit from
// the mirror at path.
func (c *Client) CommitInfo(path, sha string) (*CommitInfo, error) {
	commit, err := c.commitObject(path, sha)
	if err != nil {
		return nil, err
	}
	return &CommitInfo{
		AuthorName:  commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		Epoch:       commit.Author.When.Unix(),
		Message:     commit.Message,
	}, nil
}

// ChangedPaths diffs a commit against its first parent. A root commit
// reports every file as added.
func (c *Client) ChangedPaths(path, sha string) (added, modified, deleted []string, err error) {
	commit, err := c.commitObject(path, sha)
	if err != nil {
		return nil, nil, nil, err
	}

	newTree, err := commit.Tree()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get tree for commit %s: %w", sha, err)
	}

	var oldTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get parent of commit %s: %w", sha, err)
		}
		oldTree, err = parent.Tree()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get parent tree of commit %s: %w", sha, err)
		}
	} else {
		oldTree = &object.Tree{}
	}

	changes, err := object.DiffTree(oldTree, newTree)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to diff commit %s against parent: %w", sha, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			c.Logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}
		switch action {
		case merkletrie.Insert:
			added = append(added, change.To.Name)
		case merkletrie.Modify:
			modified = append(modified, change.To.Name)
		case merkletrie.Delete:
			deleted = append(deleted, change.From.Name)
		}
	}
	return added, modified, deleted, nil
}

func (c *Client) commitObject(path, sha string) (*object.Commit, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	commit, err := repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", sha, err)
	}
	return commit, nil
}
