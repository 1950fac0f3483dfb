package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/wire"
	"github.com/spf13/cobra"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the repositories and task queue managed by Repo-Warden",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		app, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		repos, err := app.Store.GetAllRepositories(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve repositories: %w", err)
		}
		counts, err := app.Store.CountTasks(ctx)
		if err != nil {
			return fmt.Errorf("failed to count queue tasks: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"repositories": repos,
				"queue":        counts,
			})
		}

		if len(repos) == 0 {
			slog.Info("No repositories are currently tracked by Repo-Warden.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CALLSIGN\tNAME\tVCS\tLAST UPDATED")
		for _, repo := range repos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				repo.Callsign,
				repo.Name,
				repo.VCS,
				repo.UpdatedAt.Format(time.RFC822),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nqueue: pending=%d leased=%d done=%d failed=%d\n",
			counts[core.TaskPending],
			counts[core.TaskLeased],
			counts[core.TaskDone],
			counts[core.TaskFailed],
		)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
