// Package suggest provides fuzzy matching for "did you mean" hints on
// project and artifact ids, using Levenshtein distance.
package suggest

import (
	"sort"
	"strings"
)

// maxDistance is the largest edit distance still worth suggesting.
const maxDistance = 3

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// Closest returns up to three candidates similar to unknown, best first.
// Prefix matches always qualify; otherwise candidates must be within
// maxDistance edits.
func Closest(unknown string, candidates []string) []string {
	unknown = strings.ToLower(strings.TrimSpace(unknown))
	if unknown == "" {
		return nil
	}

	type scored struct {
		value string
		score int
	}
	var matches []scored

	for _, c := range candidates {
		lc := strings.ToLower(c)
		if strings.HasPrefix(lc, unknown) {
			matches = append(matches, scored{c, 0})
			continue
		}
		if d := levenshtein(unknown, lc); d <= maxDistance {
			matches = append(matches, scored{c, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score < matches[j].score })

	var out []string
	for _, m := range matches {
		out = append(out, m.value)
		if len(out) == 3 {
			break
		}
	}
	return out
}
