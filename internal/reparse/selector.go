// Package reparse re-runs post-commit processing for tracked commits,
// either synchronously in-process or by writing entries into the durable
// task queue.
package reparse

import (
	"fmt"
	"regexp"
)

// commitRefRegexp matches "r<CALLSIGN><identifier>": an uppercase callsign
// immediately followed by a lowercase/digit VCS commit identifier.
var commitRefRegexp = regexp.MustCompile(`^r([A-Z]+)([a-z0-9]+)$`)

// CommitRef is a parsed commit reference such as "rXABCdeadbeef01".
type CommitRef struct {
	Callsign   string
	Identifier string
}

// String renders the reference back into its canonical form.
func (r CommitRef) String() string {
	return "r" + r.Callsign + r.Identifier
}

// ParseCommitRef parses a commit reference string. Malformed references
// fail with ErrMalformedCommitRef.
func ParseCommitRef(s string) (CommitRef, error) {
	m := commitRefRegexp.FindStringSubmatch(s)
	if m == nil {
		return CommitRef{}, fmt.Errorf("%w: %q (expected rCALLSIGNcommitid)", ErrMalformedCommitRef, s)
	}
	return CommitRef{Callsign: m[1], Identifier: m[2]}, nil
}

// Selector names the commits to reparse: either an explicit list of commit
// references, or every commit of one repository (optionally only those
// newer than MinEpoch). Exactly one form is active per request.
type Selector struct {
	Refs []CommitRef

	Callsign string
	MinEpoch int64
}

// ExplicitCommits builds a selector for an explicit list of references.
func ExplicitCommits(refs []CommitRef) Selector {
	return Selector{Refs: refs}
}

// AllInRepository builds a repository-wide selector. minEpoch of zero
// means no date filter.
func AllInRepository(callsign string, minEpoch int64) Selector {
	return Selector{Callsign: callsign, MinEpoch: minEpoch}
}

// Explicit reports whether the selector names individual commits.
func (s Selector) Explicit() bool {
	return len(s.Refs) > 0
}

func (s Selector) validate() error {
	if len(s.Refs) == 0 && s.Callsign == "" {
		return ErrNoTargetSelected
	}
	if len(s.Refs) > 0 && s.Callsign != "" {
		return fmt.Errorf("commit references and a repository selector are mutually exclusive")
	}
	return nil
}
