package igdb

import (
	"math"
	"strings"
)

// AutocompleteRelevance ranks a search hit for type-ahead. The upstream
// order sets the base; name closeness and rating volume adjust it.
func AutocompleteRelevance(query, name string, index, ratingCount int) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(name)

	r := 1000 - 10*float64(index)
	switch {
	case n == q:
		r += 500
	case strings.HasPrefix(n, q):
		r += 300
	case strings.Contains(n, q):
		r += 100
	}
	return r + math.Min(float64(ratingCount)/50, 30)
}
