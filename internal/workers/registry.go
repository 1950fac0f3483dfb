// Package workers implements the post-commit processing executors and the
// background runtime that drains the task queue.
package workers

import (
	"log/slog"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/repomanager"
	"github.com/sevigo/repo-warden/internal/storage"
)

// Executor identifiers persisted into queue entries. Renaming one orphans
// any pending tasks that reference the old name.
const (
	ExecGitMessage = "git-message-parser"
	ExecGitChange  = "git-change-parser"
	ExecHgMessage  = "hg-message-parser"
	ExecHgChange   = "hg-change-parser"
	ExecSvnMessage = "svn-message-parser"
	ExecHerald     = "herald"
	ExecOwners     = "owners"
)

type vcsOpKey struct {
	vcs core.VCSKind
	op  core.Operation
}

// Registry maps operations to executors: VCS-specific operations through a
// (vcs, operation) table, VCS-agnostic ones through the operation alone.
type Registry struct {
	executors map[string]core.Executor
	vcsOps    map[vcsOpKey]string
	agnostic  map[core.Operation]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]core.Executor),
		vcsOps:    make(map[vcsOpKey]string),
		agnostic:  make(map[core.Operation]string),
	}
}

// RegisterVCS binds a VCS-specific operation to an executor.
func (r *Registry) RegisterVCS(vcs core.VCSKind, op core.Operation, exec core.Executor) {
	r.executors[exec.Name()] = exec
	r.vcsOps[vcsOpKey{vcs: vcs, op: op}] = exec.Name()
}

// RegisterAgnostic binds a VCS-agnostic operation to an executor.
func (r *Registry) RegisterAgnostic(op core.Operation, exec core.Executor) {
	r.executors[exec.Name()] = exec
	r.agnostic[op] = exec.Name()
}

// Resolve implements core.ExecutorRegistry.
func (r *Registry) Resolve(vcs core.VCSKind, op core.Operation) (string, bool) {
	if op.IsVCSSpecific() {
		name, ok := r.vcsOps[vcsOpKey{vcs: vcs, op: op}]
		return name, ok
	}
	name, ok := r.agnostic[op]
	return name, ok
}

// Executor implements core.ExecutorRegistry.
func (r *Registry) Executor(name string) (core.Executor, bool) {
	exec, ok := r.executors[name]
	return exec, ok
}

// NewDefaultRegistry wires up the standard executor set. Subversion has no
// change parser; requesting the change operation for an svn repository
// plans nothing.
func NewDefaultRegistry(cfg *config.Config, store storage.Store, mgr repomanager.Manager, gitClient *gitutil.Client, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry()

	r.RegisterVCS(core.VCSGit, core.OpMessage, &GitMessageParser{Store: store, Mirrors: mgr, Git: gitClient, Logger: logger})
	r.RegisterVCS(core.VCSGit, core.OpChange, &GitChangeParser{Store: store, Mirrors: mgr, Git: gitClient, Logger: logger})
	r.RegisterVCS(core.VCSMercurial, core.OpMessage, &HgMessageParser{Store: store, Mirrors: mgr, Logger: logger})
	r.RegisterVCS(core.VCSMercurial, core.OpChange, &HgChangeParser{Store: store, Mirrors: mgr, Logger: logger})
	r.RegisterVCS(core.VCSSubversion, core.OpMessage, &SvnMessageParser{Store: store, Logger: logger})

	rules, err := LoadRules(cfg.HeraldRulesPath)
	if err != nil {
		return nil, err
	}
	r.RegisterAgnostic(core.OpHerald, &HeraldExecutor{Store: store, Rules: rules, Logger: logger})
	r.RegisterAgnostic(core.OpOwners, &OwnersExecutor{Store: store, Logger: logger})

	return r, nil
}
