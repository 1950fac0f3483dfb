// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"time"
)

// VCSKind identifies the version control system backing a tracked repository.
type VCSKind string

const (
	VCSGit        VCSKind = "git"
	VCSMercurial  VCSKind = "hg"
	VCSSubversion VCSKind = "svn"
)

// ParseVCSKind converts a user-supplied string into a VCSKind.
func ParseVCSKind(s string) (VCSKind, error) {
	switch VCSKind(s) {
	case VCSGit, VCSMercurial, VCSSubversion:
		return VCSKind(s), nil
	default:
		return "", fmt.Errorf("unknown vcs kind %q (expected git, hg or svn)", s)
	}
}

// Operation is one of the post-commit processing steps that can be run or
// re-run against a commit.
type Operation string

const (
	OpMessage Operation = "message"
	OpChange  Operation = "change"
	OpHerald  Operation = "herald"
	OpOwners  Operation = "owners"
)

// OperationOrder is the fixed order in which operations are planned per
// commit: VCS-specific parsers first, then the VCS-agnostic steps.
var OperationOrder = []Operation{OpMessage, OpChange, OpHerald, OpOwners}

// IsVCSSpecific reports whether the operation is implemented by a
// per-VCS parser rather than a VCS-agnostic executor.
func (op Operation) IsVCSSpecific() bool {
	return op == OpMessage || op == OpChange
}

// Repository is a tracked repository. The callsign is a short unique
// uppercase identifier used in commit references ("rXABC123...").
type Repository struct {
	ID        int64     `db:"id"`
	Callsign  string    `db:"callsign"`
	Name      string    `db:"name"`
	VCS       VCSKind   `db:"vcs"`
	CloneURL  string    `db:"clone_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Commit is a single tracked commit. Identifier is the VCS-native commit
// identifier (SHA for git, node hash for hg, revision number for svn).
type Commit struct {
	ID            int64     `db:"id"`
	RepositoryID  int64     `db:"repository_id"`
	Identifier    string    `db:"identifier"`
	Epoch         int64     `db:"epoch"`
	AuthorName    string    `db:"author_name"`
	AuthorEmail   string    `db:"author_email"`
	Summary       string    `db:"summary"`
	MessageParsed bool      `db:"message_parsed"`
	ChangeParsed  bool      `db:"change_parsed"`
	CreatedAt     time.Time `db:"created_at"`
}

// Ref renders the commit as a "r<CALLSIGN><identifier>" reference string.
func (c *Commit) Ref(repo *Repository) string {
	return "r" + repo.Callsign + c.Identifier
}

// PathChange is one path touched by a commit, as recorded by the change
// parser.
type PathChange struct {
	CommitID int64  `db:"commit_id"`
	Path     string `db:"path"`
	Change   string `db:"change"`
}

const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeDeleted  = "deleted"
)

// PackagePath maps an owners package onto a path prefix within a
// repository.
type PackagePath struct {
	PackageID    int64  `db:"package_id"`
	PackageName  string `db:"name"`
	RepositoryID int64  `db:"repository_id"`
	PathPrefix   string `db:"path_prefix"`
}

// TaskStatus tracks a queued task through its lifecycle.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskLeased  TaskStatus = "leased"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// TaskPayload is the unit-of-work description carried by a queue entry.
// Only signals the executor to process exactly this one commit instead of
// batching, so re-queued work stays idempotent per commit.
type TaskPayload struct {
	CommitID int64 `json:"commitID"`
	Only     bool  `json:"only"`
}

// Task is a durable queue entry consumed by the worker runtime.
type Task struct {
	ID        int64       `db:"id"`
	Executor  string      `db:"executor"`
	Payload   TaskPayload `db:"-"`
	Status    TaskStatus  `db:"status"`
	Attempts  int         `db:"attempts"`
	LastError string      `db:"last_error"`
	CreatedAt time.Time   `db:"created_at"`
	LeasedAt  *time.Time  `db:"leased_at"`
}
