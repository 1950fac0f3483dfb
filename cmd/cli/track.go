package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/github"
	"github.com/sevigo/repo-warden/internal/wire"
)

var (
	trackVCS      string
	trackCloneURL string
)

var trackCmd = &cobra.Command{
	Use:   "track <callsign> <name>",
	Short: "Start tracking a repository",
	Long: `Start tracking a repository under a callsign.

For git repositories hosted on GitHub the name is "owner/repo" and the
repository is validated against the GitHub API before it is stored. For
other VCS kinds provide --clone-url explicitly.

Examples:
  warden-cli track WARDEN sevigo/repo-warden
  warden-cli track LEGACY legacy-tools --vcs svn --clone-url https://svn.example.org/legacy`,
	Args: cobra.ExactArgs(2),
	RunE: runTrack,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	trackCmd.Flags().StringVar(&trackVCS, "vcs", "git", "Version control kind: git, hg or svn")
	trackCmd.Flags().StringVar(&trackCloneURL, "clone-url", "", "Clone URL (derived from GitHub for git repositories)")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	callsign, name := args[0], args[1]

	if callsign != strings.ToUpper(callsign) {
		return fmt.Errorf("callsign %q must be uppercase", callsign)
	}

	vcs, err := core.ParseVCSKind(trackVCS)
	if err != nil {
		return err
	}

	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app services: %w", err)
	}
	defer cleanup()

	cloneURL := trackCloneURL
	if vcs == core.VCSGit && cloneURL == "" {
		owner, repoName, ok := strings.Cut(name, "/")
		if !ok {
			return fmt.Errorf("git repository name %q must be owner/repo, or pass --clone-url", name)
		}

		ghClient, err := github.NewClient(ctx, app.Cfg, app.Logger)
		if err != nil {
			return err
		}
		ghRepo, err := ghClient.GetRepository(ctx, owner, repoName)
		if err != nil {
			return err
		}
		cloneURL = ghRepo.GetCloneURL()
	}
	if cloneURL == "" {
		return fmt.Errorf("--clone-url is required for %s repositories", vcs)
	}

	repo := &core.Repository{
		Callsign: callsign,
		Name:     name,
		VCS:      vcs,
		CloneURL: cloneURL,
	}
	if err := app.Store.CreateRepository(ctx, repo); err != nil {
		return fmt.Errorf("failed to store repository: %w", err)
	}

	successColor.Printf("Tracking %s (%s, %s)\n", callsign, name, vcs)
	dimColor.Printf("clone URL: %s\n", cloneURL)
	return nil
}
