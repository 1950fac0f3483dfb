package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// PushEvent is a simplified, internal view of a VCS push notification.
type PushEvent struct {
	RepoFullName string
	Ref          string

	Commits []PushedCommit
}

// PushedCommit carries the per-commit fields the import pipeline needs.
type PushedCommit struct {
	Identifier  string
	Epoch       int64
	AuthorName  string
	AuthorEmail string
	Summary     string
}

// EventFromPush transforms a raw GitHub push webhook into the internal
// PushEvent representation. It acts as an anti-corruption layer: the
// payload is validated here so downstream code never sees a partial event.
func EventFromPush(event *github.PushEvent) (*PushEvent, error) {
	repo := event.GetRepo()
	if repo == nil || repo.GetFullName() == "" {
		return nil, fmt.Errorf("repository information is missing from the push event")
	}

	if len(event.Commits) == 0 {
		return nil, fmt.Errorf("push event contains no commits")
	}

	out := &PushEvent{
		RepoFullName: repo.GetFullName(),
		Ref:          event.GetRef(),
	}
	for _, c := range event.Commits {
		if c.GetID() == "" {
			return nil, fmt.Errorf("push event contains a commit without an identifier")
		}
		out.Commits = append(out.Commits, PushedCommit{
			Identifier:  c.GetID(),
			Epoch:       c.GetTimestamp().Unix(),
			AuthorName:  c.GetAuthor().GetName(),
			AuthorEmail: c.GetAuthor().GetEmail(),
			Summary:     SummaryLine(c.GetMessage()),
		})
	}
	return out, nil
}

// SummaryLine returns the first line of a commit message.
func SummaryLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
