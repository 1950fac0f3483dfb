package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-warden/internal/core"
)

func TestParseHgStatus(t *testing.T) {
	t.Run("mixed status markers", func(t *testing.T) {
		out := "A new/file.go\nM pkg/server.go\nR old/file.go\n! gone/file.go\n"

		paths, err := parseHgStatus(10, out)
		require.NoError(t, err)
		assert.Equal(t, []core.PathChange{
			{CommitID: 10, Path: "new/file.go", Change: core.ChangeAdded},
			{CommitID: 10, Path: "pkg/server.go", Change: core.ChangeModified},
			{CommitID: 10, Path: "old/file.go", Change: core.ChangeDeleted},
			{CommitID: 10, Path: "gone/file.go", Change: core.ChangeDeleted},
		}, paths)
	})

	t.Run("empty output", func(t *testing.T) {
		paths, err := parseHgStatus(10, "")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("unknown marker", func(t *testing.T) {
		_, err := parseHgStatus(10, "? untracked.go\n")
		assert.Error(t, err)
	})

	t.Run("truncated line", func(t *testing.T) {
		_, err := parseHgStatus(10, "A\n")
		assert.Error(t, err)
	})
}
