package igdb

import (
	"strings"
	"unicode/utf8"

	"github.com/Henry-Sarabia/apicalypse"
	igdbapi "github.com/Henry-Sarabia/igdb/v2"
)

// minFilterWord is the shortest word that gets its own substring clause.
const minFilterWord = 2

// NameFilter builds one IGDB where-clause matching any spelling of any of
// names. Each name contributes its own words and every lexical variation;
// a multi-word spelling requires all of its words as substrings of the
// game name, and spellings are OR-joined. It returns "" when no name has
// a searchable spelling.
func NameFilter(names ...string) string {
	seen := make(map[string]struct{})
	var parts []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		parts = append(parts, p)
	}

	for _, name := range names {
		words := filterWords(strings.ToLower(strings.TrimSpace(name)))
		if len(words) > 1 {
			add(allWords(words))
		}
		for _, v := range Variations(name) {
			if vw := filterWords(v); len(vw) > 1 {
				add(allWords(vw))
			} else {
				add(contains(v))
			}
		}
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func filterWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) >= minFilterWord {
			out = append(out, w)
		}
	}
	return out
}

func contains(s string) string {
	return `name ~ *"` + EscapeQuery(s) + `"*`
}

func allWords(words []string) string {
	clauses := make([]string, len(words))
	for i, w := range words {
		clauses[i] = contains(w)
	}
	return strings.Join(clauses, " & ")
}

// setWhere passes a prebuilt where-clause through to the query.
func setWhere(filter string) igdbapi.Option {
	return func() (apicalypse.Option, error) {
		return apicalypse.Where(filter), nil
	}
}
