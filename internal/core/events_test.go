package core

import (
	"testing"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFromPush(t *testing.T) {
	ts := github.Timestamp{Time: time.Unix(1714063200, 0)}

	t.Run("valid push", func(t *testing.T) {
		raw := &github.PushEvent{
			Ref:  github.Ptr("refs/heads/main"),
			Repo: &github.PushEventRepository{FullName: github.Ptr("sevigo/repo-warden")},
			Commits: []*github.HeadCommit{
				{
					ID:        github.Ptr("a1b2c3"),
					Timestamp: &ts,
					Message:   github.Ptr("Fix leasing\n\nbody"),
					Author:    &github.CommitAuthor{Name: github.Ptr("Ada"), Email: github.Ptr("ada@example.org")},
				},
			},
		}

		event, err := EventFromPush(raw)
		require.NoError(t, err)
		assert.Equal(t, "sevigo/repo-warden", event.RepoFullName)
		assert.Equal(t, "refs/heads/main", event.Ref)
		require.Len(t, event.Commits, 1)
		assert.Equal(t, PushedCommit{
			Identifier:  "a1b2c3",
			Epoch:       1714063200,
			AuthorName:  "Ada",
			AuthorEmail: "ada@example.org",
			Summary:     "Fix leasing",
		}, event.Commits[0])
	})

	t.Run("missing repository", func(t *testing.T) {
		_, err := EventFromPush(&github.PushEvent{
			Commits: []*github.HeadCommit{{ID: github.Ptr("a1b2c3"), Timestamp: &ts}},
		})
		assert.Error(t, err)
	})

	t.Run("no commits", func(t *testing.T) {
		_, err := EventFromPush(&github.PushEvent{
			Repo: &github.PushEventRepository{FullName: github.Ptr("sevigo/repo-warden")},
		})
		assert.Error(t, err)
	})

	t.Run("commit without identifier", func(t *testing.T) {
		_, err := EventFromPush(&github.PushEvent{
			Repo:    &github.PushEventRepository{FullName: github.Ptr("sevigo/repo-warden")},
			Commits: []*github.HeadCommit{{Timestamp: &ts}},
		})
		assert.Error(t, err)
	})
}
