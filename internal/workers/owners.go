package workers

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// OwnersExecutor links a commit to the owners packages whose path prefixes
// cover its changed paths. The existing relations are deleted first, which
// is why reparsing owners sits behind a confirmation prompt.
type OwnersExecutor struct {
	Store  storage.Store
	Logger *slog.Logger
}

func (e *OwnersExecutor) Name() string { return ExecOwners }

func (e *OwnersExecutor) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	paths, err := e.Store.GetCommitPaths(ctx, commit.ID)
	if err != nil {
		return err
	}

	pkgPaths, err := e.Store.ListPackagePaths(ctx, repo.ID)
	if err != nil {
		return err
	}

	ids := matchPackages(paths, pkgPaths)

	e.Logger.Info("relinking commit owners",
		"commit", commit.Ref(repo), "packages", len(ids))
	return e.Store.ReplaceCommitPackages(ctx, commit.ID, ids)
}

// matchPackages returns the sorted, de-duplicated package IDs whose path
// prefix covers at least one changed path. A prefix matches whole path
// segments only, so "src/a" does not claim "src/ab/x".
func matchPackages(paths []core.PathChange, pkgPaths []core.PackagePath) []int64 {
	seen := make(map[int64]bool)
	for _, pp := range pkgPaths {
		for _, p := range paths {
			if pathHasPrefix(p.Path, pp.PathPrefix) {
				seen[pp.PackageID] = true
				break
			}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func pathHasPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
