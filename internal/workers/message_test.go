package workers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHgLog(t *testing.T) {
	t.Run("full template output", func(t *testing.T) {
		out := "Ada Lovelace\nada@example.org\n1714063200 -7200\nFix queue leasing\n\nLonger body here."

		name, email, epoch, message, err := parseHgLog(out)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", name)
		assert.Equal(t, "ada@example.org", email)
		assert.Equal(t, int64(1714063200), epoch)
		assert.Equal(t, "Fix queue leasing\n\nLonger body here.", message)
	})

	t.Run("too few fields", func(t *testing.T) {
		_, _, _, _, err := parseHgLog("Ada\nada@example.org\n1714063200 0")
		assert.Error(t, err)
	})

	t.Run("bad hgdate", func(t *testing.T) {
		_, _, _, _, err := parseHgLog("Ada\nada@example.org\nnot-a-date 0\nmsg")
		assert.Error(t, err)
	})
}
