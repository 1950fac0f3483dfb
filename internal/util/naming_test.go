package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirrorDirName(t *testing.T) {
	assert.Equal(t, "warden", MirrorDirName("WARDEN"))
	assert.Equal(t, "legacytools", MirrorDirName("LEGACY TOOLS!"))
	assert.Equal(t, strings.Repeat("a", 64), MirrorDirName(strings.Repeat("A", 80)))
}
