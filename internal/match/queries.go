package match

import (
	"math"
	"strings"
)

// MinTokenLen is the shortest token kept for searching and overlap counting.
const MinTokenLen = 2

// BuildQueries expands a name and its alternates into the ordered,
// deduplicated list of token sequences sent to a search index. Each name
// contributes its full tokens, its noise-stripped tokens, both with the
// trailing token dropped, and a head-truncated form for long titles.
func (v *Vocabulary) BuildQueries(name string, alternateNames []string) [][]string {
	seen := make(map[string]struct{})
	var queries [][]string

	push := func(terms []string) {
		if len(terms) == 0 {
			return
		}
		key := strings.Join(terms, "|")
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, terms)
	}

	for _, n := range append([]string{name}, alternateNames...) {
		full := Tokenize(n, MinTokenLen)
		clean := v.CleanTokens(n, MinTokenLen)

		push(full)
		push(clean)

		if len(full) > 2 {
			push(dropLast(full))
		}
		if len(clean) > 2 {
			push(dropLast(clean))
		}
		if len(full) > 3 {
			head := int(math.Ceil(float64(len(full)) * 0.6))
			push(full[:head:head])
		}
	}

	return queries
}

// dropLast returns terms without its final token, capped so appends copy.
func dropLast(terms []string) []string {
	n := len(terms) - 1
	return terms[:n:n]
}
