package categorize

import (
	"strings"
	"unicode"
)

// normalize lowercases s, turns punctuation into spaces and collapses runs of
// whitespace.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// terms returns the distinct tokens of a normalized description, in order.
func terms(s string) []string {
	fields := strings.Fields(normalize(s))
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func termSet(s string) map[string]struct{} {
	ts := terms(s)
	set := make(map[string]struct{}, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

// similarity is the Jaccard overlap of two token sets, in [0, 1].
func similarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
