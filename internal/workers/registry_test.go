package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/repo-warden/internal/config"
	"github.com/sevigo/repo-warden/internal/core"
)

func TestDefaultRegistryResolve(t *testing.T) {
	cfg := &config.Config{}
	registry, err := NewDefaultRegistry(cfg, nil, nil, nil, testLogger())
	require.NoError(t, err)

	testCases := []struct {
		name     string
		vcs      core.VCSKind
		op       core.Operation
		expected string
		ok       bool
	}{
		{"git message", core.VCSGit, core.OpMessage, ExecGitMessage, true},
		{"git change", core.VCSGit, core.OpChange, ExecGitChange, true},
		{"hg message", core.VCSMercurial, core.OpMessage, ExecHgMessage, true},
		{"hg change", core.VCSMercurial, core.OpChange, ExecHgChange, true},
		{"svn message", core.VCSSubversion, core.OpMessage, ExecSvnMessage, true},
		{"svn change is unmapped", core.VCSSubversion, core.OpChange, "", false},
		{"herald ignores vcs", core.VCSSubversion, core.OpHerald, ExecHerald, true},
		{"owners ignores vcs", core.VCSMercurial, core.OpOwners, ExecOwners, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, ok := registry.Resolve(tc.vcs, tc.op)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, name)
		})
	}
}

func TestRegistryExecutorLookup(t *testing.T) {
	cfg := &config.Config{}
	registry, err := NewDefaultRegistry(cfg, nil, nil, nil, testLogger())
	require.NoError(t, err)

	exec, ok := registry.Executor(ExecHerald)
	require.True(t, ok)
	assert.Equal(t, ExecHerald, exec.Name())

	_, ok = registry.Executor("unknown")
	assert.False(t, ok)
}
