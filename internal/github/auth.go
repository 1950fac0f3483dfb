package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/repo-warden/internal/config"
)

// NewClient creates an authenticated GitHub client. A personal token takes
// precedence; otherwise the client authenticates as the configured GitHub
// App installation.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	if cfg.GitHub.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
		return NewGitHubClient(github.NewClient(oauth2.NewClient(ctx, ts)), logger), nil
	}

	if cfg.GitHub.AppID == 0 || cfg.GitHub.InstallationID == 0 {
		return nil, fmt.Errorf("no GitHub credentials configured: set GITHUB_TOKEN or GITHUB_APP_ID + GITHUB_INSTALLATION_ID")
	}

	logger.Info("creating GitHub installation client", "installation_id", cfg.GitHub.InstallationID)

	privateKey, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHub.PrivateKeyPath, err)
	}

	transport, err := ghinstallation.New(http.DefaultTransport, cfg.GitHub.AppID, cfg.GitHub.InstallationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	return NewGitHubClient(github.NewClient(&http.Client{Transport: transport}), logger), nil
}
