package util

import (
	"regexp"
	"strings"
)

var mirrorDirRegexp = regexp.MustCompile("[^a-z0-9_-]+")

// MirrorDirName builds a filesystem-safe directory name for a repository
// mirror from its callsign.
func MirrorDirName(callsign string) string {
	name := strings.ToLower(callsign)
	name = mirrorDirRegexp.ReplaceAllString(name, "")

	const maxLen = 64
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}
