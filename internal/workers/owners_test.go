package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-warden/internal/core"
)

func TestMatchPackages(t *testing.T) {
	pkgPaths := []core.PackagePath{
		{PackageID: 1, PathPrefix: "src/core"},
		{PackageID: 2, PathPrefix: "src/core/net"},
		{PackageID: 3, PathPrefix: "docs/"},
		{PackageID: 4, PathPrefix: ""},
	}

	testCases := []struct {
		name     string
		paths    []core.PathChange
		expected []int64
	}{
		{
			name:     "nested prefixes both match",
			paths:    []core.PathChange{{Path: "src/core/net/dial.go"}},
			expected: []int64{1, 2, 4},
		},
		{
			name:     "prefix matches whole segments only",
			paths:    []core.PathChange{{Path: "src/corex/util.go"}},
			expected: []int64{4},
		},
		{
			name:     "exact prefix match",
			paths:    []core.PathChange{{Path: "src/core"}},
			expected: []int64{1, 4},
		},
		{
			name: "ids are sorted and de-duplicated",
			paths: []core.PathChange{
				{Path: "docs/readme.md"},
				{Path: "docs/api.md"},
				{Path: "src/core/core.go"},
			},
			expected: []int64{1, 3, 4},
		},
		{
			name:     "no changed paths",
			paths:    nil,
			expected: []int64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, matchPackages(tc.paths, pkgPaths))
		})
	}
}

func TestPathHasPrefix(t *testing.T) {
	assert.True(t, pathHasPrefix("src/core/core.go", "src/core"))
	assert.True(t, pathHasPrefix("src/core/core.go", "src/core/"))
	assert.True(t, pathHasPrefix("src/core", "src/core"))
	assert.True(t, pathHasPrefix("anything", ""))
	assert.False(t, pathHasPrefix("src/corex/a.go", "src/core"))
	assert.False(t, pathHasPrefix("src", "src/core"))
}

func TestOwnersExecutorRun(t *testing.T) {
	repo := &core.Repository{ID: 1, Callsign: "WARDEN", VCS: core.VCSGit}
	commit := &core.Commit{ID: 10, RepositoryID: 1, Identifier: "abc123"}

	store := &recordingStore{
		paths: map[int64][]core.PathChange{
			10: {
				{CommitID: 10, Path: "src/core/net/dial.go", Change: core.ChangeModified},
			},
		},
		pkgPaths: []core.PackagePath{
			{PackageID: 7, RepositoryID: 1, PathPrefix: "src/core"},
			{PackageID: 9, RepositoryID: 1, PathPrefix: "docs"},
		},
	}

	exec := &OwnersExecutor{Store: store, Logger: testLogger()}
	require.NoError(t, exec.Run(context.Background(), repo, commit))
	assert.Equal(t, []int64{7}, store.packages)
}
