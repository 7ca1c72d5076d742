// Package similarity scores how close two subcategory labels are, as a
// percentage. Pure functions, no side effects.
package similarity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims, lowercases and NFC-composes a label so that visually
// identical Vietnamese strings (composed vs decomposed diacritics) compare
// equal.
func Normalize(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// Score returns the similarity of a and b in [0,100]. Identical normalized
// strings (including two empties) score 100; otherwise the score is
// (len(longer) - editDistance) / len(longer) * 100, clamped.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 100
	}
	ra, rb := []rune(na), []rune(nb)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	d := levenshtein(ra, rb)
	score := float64(longer-d) / float64(longer) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// levenshtein — character-level edit distance, unit cost for insert/delete/
// substitute. Two rolling rows keep memory at O(min(n,m)).
func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int { return min(min(a, b), c) }
