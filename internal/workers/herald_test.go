package workers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// recordingStore captures parse results in memory for assertions.
type recordingStore struct {
	storage.Store

	paths    map[int64][]core.PathChange
	pkgPaths []core.PackagePath

	audits   [][2]string
	packages []int64
}

func (s *recordingStore) GetCommitPaths(_ context.Context, commitID int64) ([]core.PathChange, error) {
	return s.paths[commitID], nil
}

func (s *recordingStore) ListPackagePaths(_ context.Context, _ int64) ([]core.PackagePath, error) {
	return s.pkgPaths, nil
}

func (s *recordingStore) RecordHeraldAudit(_ context.Context, _ int64, ruleName, action string) error {
	s.audits = append(s.audits, [2]string{ruleName, action})
	return nil
}

func (s *recordingStore) ReplaceCommitPackages(_ context.Context, _ int64, packageIDs []int64) error {
	s.packages = packageIDs
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "herald.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	t.Run("empty path yields no rules", func(t *testing.T) {
		rules, err := LoadRules("")
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("valid file", func(t *testing.T) {
		path := writeRuleFile(t, `
rules:
  - name: security-review
    message_pattern: "(?i)auth|crypto"
    action: flag
  - name: migrations
    path_prefix: internal/db/migrations
`)
		rules, err := LoadRules(path)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "security-review", rules[0].Name)
		assert.Equal(t, "flag", rules[0].Action)
		// Action defaults to audit.
		assert.Equal(t, "audit", rules[1].Action)
	})

	t.Run("rule without name fails", func(t *testing.T) {
		path := writeRuleFile(t, "rules:\n  - action: flag\n")
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("bad message pattern fails", func(t *testing.T) {
		path := writeRuleFile(t, "rules:\n  - name: broken\n    message_pattern: \"([\"\n")
		_, err := LoadRules(path)
		assert.Error(t, err)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}

func TestHeraldExecutorRun(t *testing.T) {
	repo := &core.Repository{ID: 1, Callsign: "WARDEN", VCS: core.VCSGit}
	commit := &core.Commit{ID: 10, RepositoryID: 1, Identifier: "abc123", Summary: "Fix auth token refresh"}

	rulesYAML := `
rules:
  - name: security-review
    message_pattern: "(?i)auth"
    action: flag
  - name: other-repo-only
    repository: OTHER
    message_pattern: "(?i)auth"
  - name: migrations
    path_prefix: internal/db/migrations
`
	rules, err := LoadRules(writeRuleFile(t, rulesYAML))
	require.NoError(t, err)

	t.Run("message rule matches, repo-scoped rule does not", func(t *testing.T) {
		store := &recordingStore{paths: map[int64][]core.PathChange{}}
		exec := &HeraldExecutor{Store: store, Rules: rules, Logger: testLogger()}

		require.NoError(t, exec.Run(context.Background(), repo, commit))
		require.Len(t, store.audits, 1)
		assert.Equal(t, [2]string{"security-review", "flag"}, store.audits[0])
	})

	t.Run("path rule matches against changed paths", func(t *testing.T) {
		store := &recordingStore{paths: map[int64][]core.PathChange{
			10: {{CommitID: 10, Path: "internal/db/migrations/000002_add.up.sql", Change: core.ChangeAdded}},
		}}
		exec := &HeraldExecutor{Store: store, Rules: rules, Logger: testLogger()}

		require.NoError(t, exec.Run(context.Background(), repo, commit))
		require.Len(t, store.audits, 2)
		assert.Equal(t, [2]string{"migrations", "audit"}, store.audits[1])
	})

	t.Run("no rules is a no-op", func(t *testing.T) {
		store := &recordingStore{}
		exec := &HeraldExecutor{Store: store, Logger: testLogger()}

		require.NoError(t, exec.Run(context.Background(), repo, commit))
		assert.Empty(t, store.audits)
	})
}
