package reparse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// Request describes one reparse invocation.
type Request struct {
	Selector   Selector
	Operations []core.Operation

	// RunLocal forces synchronous in-process execution for a
	// repository-wide selector. Ignored for explicit commit references,
	// which always run locally.
	RunLocal bool

	// Force skips the destructive-operation confirmation prompt.
	Force bool
}

// Dispatcher resolves a reparse request into an ordered list of work items
// and either queues or executes them.
type Dispatcher struct {
	store    storage.Store
	queue    core.TaskQueue
	registry core.ExecutorRegistry
	confirm  core.ConfirmFunc
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher. confirm may be nil for callers that
// never approve destructive operations interactively.
func NewDispatcher(store storage.Store, queue core.TaskQueue, registry core.ExecutorRegistry, confirm core.ConfirmFunc, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		queue:    queue,
		registry: registry,
		confirm:  confirm,
		logger:   logger,
	}
}

// workItem is one (repository, commit, operation) unit resolved to a
// concrete executor. Work items only live for the duration of a dispatch.
type workItem struct {
	repo     *core.Repository
	commit   *core.Commit
	op       core.Operation
	executor string
}

// Run validates the request completely, then queues or executes the
// resulting work items. Validation failures occur before any side effect;
// in immediate mode a single item's failure is recorded in the report and
// the batch continues.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*Report, error) {
	ops, err := normalizeOperations(req.Operations)
	if err != nil {
		return nil, err
	}

	if err := req.Selector.validate(); err != nil {
		return nil, err
	}

	if ops[core.OpOwners] && !req.Force {
		prompt := "Reparsing owners will delete existing commit/package relations before rebuilding them. Continue?"
		if d.confirm == nil || !d.confirm(prompt) {
			return nil, ErrConfirmationRequired
		}
	}

	pairs, err := d.resolveSelector(ctx, req.Selector)
	if err != nil {
		return nil, err
	}

	plan := d.buildPlan(pairs, ops)

	immediate := req.Selector.Explicit() || req.RunLocal

	report := &Report{}
	if immediate {
		d.executePlan(ctx, plan, report)
		return report, nil
	}
	if err := d.enqueuePlan(ctx, plan, report); err != nil {
		return report, err
	}
	return report, nil
}

func normalizeOperations(ops []core.Operation) (map[core.Operation]bool, error) {
	set := make(map[core.Operation]bool, len(ops))
	for _, op := range ops {
		switch op {
		case core.OpMessage, core.OpChange, core.OpHerald, core.OpOwners:
			set[op] = true
		default:
			return nil, fmt.Errorf("unknown operation %q", op)
		}
	}
	if len(set) == 0 {
		return nil, ErrNoOperationsRequested
	}
	return set, nil
}

type pair struct {
	repo   *core.Repository
	commit *core.Commit
}

// resolveSelector turns the selector into a concrete, non-empty ordered
// list of (repository, commit) pairs.
func (d *Dispatcher) resolveSelector(ctx context.Context, sel Selector) ([]pair, error) {
	if sel.Explicit() {
		return d.resolveRefs(ctx, sel.Refs)
	}

	repo, err := d.store.GetRepositoryByCallsign(ctx, sel.Callsign)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepository, sel.Callsign)
	}

	commits, err := d.store.ListCommitsSince(ctx, repo.ID, sel.MinEpoch)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%w in repository %s", ErrNoCommitsFound, sel.Callsign)
	}

	pairs := make([]pair, 0, len(commits))
	for _, commit := range commits {
		pairs = append(pairs, pair{repo: repo, commit: commit})
	}
	return pairs, nil
}

func (d *Dispatcher) resolveRefs(ctx context.Context, refs []CommitRef) ([]pair, error) {
	repos := make(map[string]*core.Repository)
	pairs := make([]pair, 0, len(refs))

	for _, ref := range refs {
		repo, ok := repos[ref.Callsign]
		if !ok {
			var err error
			repo, err = d.store.GetRepositoryByCallsign(ctx, ref.Callsign)
			if err != nil {
				return nil, err
			}
			if repo == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownRepository, ref.Callsign)
			}
			repos[ref.Callsign] = repo
		}

		commit, err := d.store.GetCommitByIdentifier(ctx, repo.ID, ref.Identifier)
		if err != nil {
			return nil, err
		}
		if commit == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCommit, ref)
		}
		pairs = append(pairs, pair{repo: repo, commit: commit})
	}
	return pairs, nil
}

// buildPlan produces the ordered work item list: per commit, VCS-specific
// operations first (message, then change), then the VCS-agnostic ones
// (herald, then owners). A requested VCS-specific operation with no
// registered executor for the repository's VCS is skipped, not an error.
func (d *Dispatcher) buildPlan(pairs []pair, ops map[core.Operation]bool) []workItem {
	var plan []workItem
	for _, p := range pairs {
		for _, op := range core.OperationOrder {
			if !ops[op] {
				continue
			}
			name, ok := d.registry.Resolve(p.repo.VCS, op)
			if !ok {
				d.logger.Debug("operation not supported for vcs, skipping",
					"vcs", p.repo.VCS, "operation", op, "commit", p.commit.Ref(p.repo))
				continue
			}
			plan = append(plan, workItem{repo: p.repo, commit: p.commit, op: op, executor: name})
		}
	}
	return plan
}

func (d *Dispatcher) enqueuePlan(ctx context.Context, plan []workItem, report *Report) error {
	for _, item := range plan {
		payload := core.TaskPayload{CommitID: item.commit.ID, Only: true}
		if err := d.queue.Enqueue(ctx, item.executor, payload); err != nil {
			return fmt.Errorf("failed to enqueue %s for %s: %w", item.op, item.commit.Ref(item.repo), err)
		}
		report.add(ItemResult{
			Ref:      item.commit.Ref(item.repo),
			Op:       item.op,
			Executor: item.executor,
			Outcome:  OutcomeQueued,
		})
	}
	return nil
}

func (d *Dispatcher) executePlan(ctx context.Context, plan []workItem, report *Report) {
	for _, item := range plan {
		exec, ok := d.registry.Executor(item.executor)
		if !ok {
			// Registry handed out a name it cannot resolve; treat as a
			// per-item failure so the rest of the batch still runs.
			report.add(ItemResult{
				Ref:     item.commit.Ref(item.repo),
				Op:      item.op,
				Outcome: OutcomeFailed,
				Reason:  fmt.Sprintf("no executor registered under %q", item.executor),
			})
			continue
		}

		result := ItemResult{
			Ref:      item.commit.Ref(item.repo),
			Op:       item.op,
			Executor: item.executor,
			Outcome:  OutcomeSucceeded,
		}
		if err := exec.Run(ctx, item.repo, item.commit); err != nil {
			d.logger.Error("work item failed",
				"commit", result.Ref, "operation", item.op, "error", err)
			result.Outcome = OutcomeFailed
			result.Reason = err.Error()
		}
		report.add(result)
	}
}
