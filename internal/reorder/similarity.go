package reorder

import (
	"strings"
)

// Similarity scores how close two parameter names are, in [0,1].
// Exact match is 1, a pure case change 0.95, a prefix/suffix relationship
// 0.85, anything else the case-insensitive Levenshtein ratio.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 0.95
	}

	if strings.HasPrefix(la, lb) || strings.HasPrefix(lb, la) ||
		strings.HasSuffix(la, lb) || strings.HasSuffix(lb, la) {
		return 0.85
	}

	maxLen := len(la)
	if len(lb) > maxLen {
		maxLen = len(lb)
	}
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(levenshtein(la, lb))/float64(maxLen)
}

// Interpret maps a similarity score to a human-readable bucket
func Interpret(score float64) string {
	switch {
	case score >= 0.95:
		return "case change only"
	case score >= 0.8:
		return "abbreviation or spelling variation"
	case score >= 0.6:
		return "moderate change"
	case score >= 0.4:
		return "significant change"
	default:
		return "completely different"
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
