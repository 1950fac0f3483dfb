package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVCSKind(t *testing.T) {
	for _, valid := range []string{"git", "hg", "svn"} {
		kind, err := ParseVCSKind(valid)
		require.NoError(t, err)
		assert.Equal(t, VCSKind(valid), kind)
	}

	_, err := ParseVCSKind("cvs")
	assert.Error(t, err)
}

func TestCommitRef(t *testing.T) {
	repo := &Repository{Callsign: "WARDEN"}
	commit := &Commit{Identifier: "a1b2c3"}
	assert.Equal(t, "rWARDENa1b2c3", commit.Ref(repo))
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, "first line", SummaryLine("first line\nsecond line"))
	assert.Equal(t, "only line", SummaryLine("only line"))
	assert.Equal(t, "", SummaryLine("\nbody"))
	assert.Equal(t, "", SummaryLine(""))
}

func TestOperationIsVCSSpecific(t *testing.T) {
	assert.True(t, OpMessage.IsVCSSpecific())
	assert.True(t, OpChange.IsVCSSpecific())
	assert.False(t, OpHerald.IsVCSSpecific())
	assert.False(t, OpOwners.IsVCSSpecific())
}
