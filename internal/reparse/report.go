package reparse

import "github.com/sevigo/repo-warden/internal/core"

// Outcome is the result of a single planned work item.
type Outcome string

const (
	OutcomeQueued    Outcome = "queued"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// ItemResult records the outcome of one (commit, operation) work item.
type ItemResult struct {
	Ref      string
	Op       core.Operation
	Executor string
	Outcome  Outcome
	Reason   string
}

// Report summarizes a dispatch run.
type Report struct {
	Queued    int
	Succeeded int
	Failed    int
	Items     []ItemResult
}

func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case OutcomeQueued:
		r.Queued++
	case OutcomeSucceeded:
		r.Succeeded++
	case OutcomeFailed:
		r.Failed++
	}
}
