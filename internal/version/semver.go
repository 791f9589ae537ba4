package version

import (
	"strconv"
	"strings"
)

// parseSemver extracts the numeric core of a semver string. Prerelease and
// build metadata are stripped; missing components default to 0. Invalid
// input yields {0,0,0}.
func parseSemver(v string) [3]int {
	v = strings.TrimPrefix(v, "v")

	// Strip build metadata, then prerelease.
	if i := strings.Index(v, "+"); i >= 0 {
		v = v[:i]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		v = v[:i]
	}

	var out [3]int
	parts := strings.Split(v, ".")
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return [3]int{}
		}
		out[i] = n
	}
	return out
}

// isNewer reports whether candidate is a strictly newer version than current.
func isNewer(candidate, current string) bool {
	a := parseSemver(candidate)
	b := parseSemver(current)
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
