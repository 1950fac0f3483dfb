package reparse

import "errors"

// Validation errors. All of them are reported before any queue entry is
// written or any executor is invoked.
var (
	ErrUnknownRepository     = errors.New("unknown repository")
	ErrUnknownCommit         = errors.New("unknown commit")
	ErrMalformedCommitRef    = errors.New("malformed commit reference")
	ErrNoCommitsFound        = errors.New("no commits found")
	ErrNoOperationsRequested = errors.New("no operations requested")
	ErrConfirmationRequired  = errors.New("confirmation required")
	ErrNoTargetSelected      = errors.New("no commits or repository specified")
)
