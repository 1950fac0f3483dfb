// Package github provides authenticated access to the GitHub API.
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v73/github"
)

// Client is the narrow slice of the GitHub API the application uses.
type Client interface {
	// GetRepository fetches repository metadata, used to validate a
	// repository before tracking it.
	GetRepository(ctx context.Context, owner, name string) (*github.Repository, error)
}

type githubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps a raw go-github client.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &githubClient{client: client, logger: logger}
}

func (c *githubClient) GetRepository(ctx context.Context, owner, name string) (*github.Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, name, err)
	}
	return repo, nil
}
