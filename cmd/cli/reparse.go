package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/reparse"
	"github.com/sevigo/repo-warden/internal/wire"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var (
	reparseRepo    string
	reparseMinDate string
	reparseForce   bool
	reparseLocal   bool

	opMessage bool
	opChange  bool
	opHerald  bool
	opOwners  bool
	opAll     bool
)

var reparseCmd = &cobra.Command{
	Use:   "reparse [commit-ref ...]",
	Short: "Re-run parsing stages for tracked commits",
	Long: `Re-run parsing stages for tracked commits.

Targets are either explicit commit references (e.g. rWARDENa1b2c3) or every
commit of one repository selected with --repo. Explicit references run in
the current process; --repo queues work for the daemon pool unless --local
is given.

Examples:
  warden-cli reparse --message rWARDENa1b2c3 rWARDENd4e5f6
  warden-cli reparse --all --repo WARDEN --min-date 2026-01-01
  warden-cli reparse --owners --force --local --repo WARDEN`,
	RunE: runReparse,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reparseCmd.Flags().StringVar(&reparseRepo, "repo", "", "Reparse all commits of the repository with this callsign")
	reparseCmd.Flags().StringVar(&reparseMinDate, "min-date", "", "With --repo, only commits after this date (YYYY-MM-DD, RFC3339 or unix epoch)")
	reparseCmd.Flags().BoolVar(&reparseForce, "force", false, "Skip the confirmation prompt for destructive stages")
	reparseCmd.Flags().BoolVar(&reparseLocal, "local", false, "With --repo, run in this process instead of queueing")

	reparseCmd.Flags().BoolVar(&opMessage, "message", false, "Re-parse commit messages")
	reparseCmd.Flags().BoolVar(&opChange, "change", false, "Re-parse changed paths")
	reparseCmd.Flags().BoolVar(&opHerald, "herald", false, "Re-run herald rules")
	reparseCmd.Flags().BoolVar(&opOwners, "owners", false, "Re-run package ownership association (destructive)")
	reparseCmd.Flags().BoolVar(&opAll, "all", false, "Run every stage")

	rootCmd.AddCommand(reparseCmd)
}

func runReparse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	selector, err := buildSelector(args)
	if err != nil {
		return err
	}

	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app services: %w", err)
	}
	defer cleanup()

	dispatcher := reparse.NewDispatcher(app.Store, app.Queue, app.Registry, promptConfirm, app.Logger)

	report, err := dispatcher.Run(ctx, reparse.Request{
		Selector:   selector,
		Operations: selectedOperations(),
		RunLocal:   reparseLocal,
		Force:      reparseForce,
	})
	if err != nil {
		return err
	}

	printReport(report)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d work items failed", report.Failed, len(report.Items))
	}
	return nil
}

func buildSelector(args []string) (reparse.Selector, error) {
	if reparseRepo != "" {
		if len(args) > 0 {
			return reparse.Selector{}, fmt.Errorf("--repo cannot be combined with explicit commit references")
		}
		minEpoch, err := parseMinDate(reparseMinDate)
		if err != nil {
			return reparse.Selector{}, err
		}
		return reparse.AllInRepository(reparseRepo, minEpoch), nil
	}

	refs := make([]reparse.CommitRef, 0, len(args))
	for _, arg := range args {
		ref, err := reparse.ParseCommitRef(arg)
		if err != nil {
			return reparse.Selector{}, err
		}
		refs = append(refs, ref)
	}
	return reparse.ExplicitCommits(refs), nil
}

// parseMinDate accepts a unix epoch, an RFC3339 timestamp or a plain date.
func parseMinDate(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epoch, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unparseable --min-date value %q", s)
}

func selectedOperations() []core.Operation {
	if opAll {
		return core.OperationOrder
	}
	picked := map[core.Operation]bool{
		core.OpMessage: opMessage,
		core.OpChange:  opChange,
		core.OpHerald:  opHerald,
		core.OpOwners:  opOwners,
	}
	var ops []core.Operation
	for _, op := range core.OperationOrder {
		if picked[op] {
			ops = append(ops, op)
		}
	}
	return ops
}

// promptConfirm asks the operator before a destructive stage runs.
func promptConfirm(prompt string) bool {
	warnColor.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printReport(report *reparse.Report) {
	titleColor.Println("Reparse Report")
	dimColor.Printf("queued=%d succeeded=%d failed=%d\n\n", report.Queued, report.Succeeded, report.Failed)

	for _, item := range report.Items {
		switch item.Outcome {
		case reparse.OutcomeQueued:
			dimColor.Printf("  QUEUED    %-28s %-10s %s\n", item.Ref, item.Op, item.Executor)
		case reparse.OutcomeSucceeded:
			successColor.Printf("  OK        %-28s %-10s %s\n", item.Ref, item.Op, item.Executor)
		case reparse.OutcomeFailed:
			errorColor.Printf("  FAILED    %-28s %-10s %s\n", item.Ref, item.Op, item.Executor)
			if item.Reason != "" {
				errorColor.Printf("            %s\n", item.Reason)
			}
		}
	}
}
