package reparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommitRef(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected CommitRef
		wantErr  bool
	}{
		{
			name:     "valid git sha reference",
			input:    "rWARDENa1b2c3d4",
			expected: CommitRef{Callsign: "WARDEN", Identifier: "a1b2c3d4"},
		},
		{
			name:     "valid numeric revision reference",
			input:    "rLEGACY1234",
			expected: CommitRef{Callsign: "LEGACY", Identifier: "1234"},
		},
		{
			name:     "single letter callsign",
			input:    "rXdeadbeef",
			expected: CommitRef{Callsign: "X", Identifier: "deadbeef"},
		},
		{
			name:    "missing leading r",
			input:   "WARDENa1b2c3",
			wantErr: true,
		},
		{
			name:    "uppercase characters in identifier",
			input:   "rWARDENA1B2C3",
			wantErr: true,
		},
		{
			name:    "missing identifier",
			input:   "rWARDEN",
			wantErr: true,
		},
		{
			name:    "missing callsign",
			input:   "ra1b2c3",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "trailing garbage",
			input:   "rWARDENa1b2c3!",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseCommitRef(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCommitRef)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ref)
			assert.Equal(t, tc.input, ref.String())
		})
	}
}

func TestSelectorValidate(t *testing.T) {
	t.Run("no target selected", func(t *testing.T) {
		err := Selector{}.validate()
		assert.ErrorIs(t, err, ErrNoTargetSelected)
	})

	t.Run("refs and repository are mutually exclusive", func(t *testing.T) {
		sel := Selector{
			Refs:     []CommitRef{{Callsign: "WARDEN", Identifier: "abc123"}},
			Callsign: "WARDEN",
		}
		err := sel.validate()
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoTargetSelected))
	})

	t.Run("explicit refs are valid", func(t *testing.T) {
		sel := ExplicitCommits([]CommitRef{{Callsign: "WARDEN", Identifier: "abc123"}})
		assert.NoError(t, sel.validate())
		assert.True(t, sel.Explicit())
	})

	t.Run("repository selector is valid", func(t *testing.T) {
		sel := AllInRepository("WARDEN", 0)
		assert.NoError(t, sel.validate())
		assert.False(t, sel.Explicit())
	})
}
