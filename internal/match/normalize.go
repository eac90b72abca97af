// Package match reconciles a known game identity against noisy search
// results from external catalogues: title normalization, query variant
// generation, tiered similarity scoring and composite candidate ranking.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningDiacritics is the Combining Diacritical Marks block.
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var punctuation = strings.NewReplacer(
	"'", "", "’", "", "‘", "",
	":", " ", "-", " ", "–", " ", "—", " ",
	".", " ", "!", " ", "?", " ",
	"&", " and ",
)

// foldDiacritics removes combining accents (é -> e) and recomposes what is left.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize canonicalizes a free-form title: lowercase, accents folded,
// apostrophes dropped, separators turned into spaces, "&" spelled out,
// everything else that is not a letter, digit or space removed, and
// whitespace collapsed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = foldDiacritics(s)
	s = punctuation.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// StripNoise normalizes s and drops every noise word.
func (v *Vocabulary) StripNoise(s string) string {
	toks := splitTokens(Normalize(s))
	kept := toks[:0]
	for _, t := range toks {
		if !v.IsNoise(t) {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// Tokenize normalizes s and keeps tokens of at least minLen characters.
func Tokenize(s string, minLen int) []string {
	return filterShort(splitTokens(Normalize(s)), minLen)
}

// CleanTokens is Tokenize applied to the noise-stripped form of s.
func (v *Vocabulary) CleanTokens(s string, minLen int) []string {
	return filterShort(splitTokens(v.StripNoise(s)), minLen)
}

func splitTokens(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, " ")
}

func filterShort(toks []string, minLen int) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if runeLen(t) >= minLen {
			out = append(out, t)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
