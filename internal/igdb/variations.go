package igdb

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	arabicWord  = regexp.MustCompile(`\b(\d+)\b`)
	romanWord   = regexp.MustCompile(`(?i)\b(i{1,3}|iv|vi{0,3}|ix|x)\b`)
	arabicRoman = map[string]string{
		"1": "i", "2": "ii", "3": "iii", "4": "iv", "5": "v",
		"6": "vi", "7": "vii", "8": "viii", "9": "ix", "10": "x",
	}
	romanArabic = invert(arabicRoman)
)

type affix struct {
	word  string
	forms []string
}

// Prefixes that titles write joined, hyphenated or spaced.
var prefixes = []affix{
	{"re", []string{"re-", "re "}},
	{"pre", []string{"pre-", "pre "}},
	{"un", []string{"un-", "un "}},
	{"non", []string{"non-", "non "}},
	{"mega", []string{"mega "}},
	{"super", []string{"super "}},
	{"ultra", []string{"ultra "}},
	{"mini", []string{"mini "}},
	{"micro", []string{"micro "}},
	{"neo", []string{"neo "}},
	{"bio", []string{"bio "}},
	{"cyber", []string{"cyber "}},
}

// Suffixes that titles write joined or spaced.
var suffixes = []affix{
	{"man", []string{" man"}},
	{"boy", []string{" boy"}},
	{"craft", []string{" craft"}},
	{"vania", []string{" vania"}},
	{"world", []string{" world"}},
	{"land", []string{" land"}},
	{"star", []string{" star"}},
	{"fire", []string{" fire"}},
	{"ball", []string{" ball"}},
	{"blade", []string{" blade"}},
	{"soul", []string{" soul"}},
	{"born", []string{" born"}},
	{"bound", []string{" bound"}},
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// orderedSet keeps first-insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// each visits every item, including those added during the walk.
func (s *orderedSet) each(fn func(string)) {
	for i := 0; i < len(s.items); i++ {
		fn(s.items[i])
	}
}

// Variations returns lexical spellings of q that a full-text game search
// may index differently: spacing and hyphenation, roman and arabic
// numerals, split prefixes and suffixes. The lowercased input comes first;
// results shorter than two characters are dropped.
func Variations(q string) []string {
	lower := strings.ToLower(strings.TrimSpace(q))
	set := &orderedSet{seen: make(map[string]struct{})}

	set.add(lower)
	set.add(whitespace.ReplaceAllString(lower, ""))

	if !strings.Contains(lower, " ") {
		runes := []rune(lower)
		for i := 2; i <= len(runes)-2; i++ {
			set.add(string(runes[:i]) + " " + string(runes[i:]))
		}
	} else {
		set.add(whitespace.ReplaceAllString(lower, "-"))
		set.add(whitespace.ReplaceAllString(lower, ""))
	}
	if strings.Contains(lower, "-") {
		set.add(strings.ReplaceAll(lower, "-", " "))
		set.add(strings.ReplaceAll(lower, "-", ""))
	}

	set.each(func(v string) {
		roman := arabicWord.ReplaceAllStringFunc(v, func(n string) string {
			if r, ok := arabicRoman[n]; ok {
				return r
			}
			return n
		})
		set.add(roman)

		arabic := romanWord.ReplaceAllStringFunc(v, func(m string) string {
			if a, ok := romanArabic[strings.ToLower(m)]; ok {
				return a
			}
			return m
		})
		set.add(arabic)
	})

	set.each(func(v string) {
		for _, p := range prefixes {
			if strings.HasPrefix(v, p.word) && len(v) > len(p.word) && v[len(p.word)] != ' ' && v[len(p.word)] != '-' {
				for _, f := range p.forms {
					set.add(f + v[len(p.word):])
				}
			}
			for _, f := range p.forms {
				if strings.HasPrefix(v, f) {
					set.add(p.word + v[len(f):])
				}
			}
		}
	})

	set.each(func(v string) {
		for _, s := range suffixes {
			if strings.HasSuffix(v, s.word) && len(v) > len(s.word) {
				before := v[:len(v)-len(s.word)]
				if last := before[len(before)-1]; last != ' ' && last != '-' {
					for _, f := range s.forms {
						set.add(before + f)
					}
				}
			}
			for _, f := range s.forms {
				if strings.HasSuffix(v, f) {
					set.add(v[:len(v)-len(f)] + s.word)
				}
			}
		}
	})

	out := make([]string, 0, len(set.items))
	for _, v := range set.items {
		if utf8.RuneCountInString(v) >= 2 {
			out = append(out, v)
		}
	}
	return out
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeQuery escapes s for use inside a quoted IGDB query string.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
