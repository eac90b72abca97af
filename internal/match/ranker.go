package match

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Rejected is the score given to a candidate whose name similarity is
// below the engine's minimum.
const Rejected = -1.0

// PlatformWeight is the bonus for a full platform overlap.
const PlatformWeight = 80.0

// ErrEmptyName is returned for an identity without a usable name.
var ErrEmptyName = errors.New("missing name")

// Options tunes an Engine. The two shipped configurations are Strict and Loose.
type Options struct {
	// MinScore gates candidates whose name similarity, and final score,
	// fall below it. Zero disables the gate.
	MinScore            float64
	LengthPenaltyFactor float64
	LengthPenaltyCap    float64
	PlatformScoring     bool
	ZeroingShortcuts    bool
}

// Strict is used against the completion-time index, where a wrong match is
// worse than no match.
func Strict() Options {
	return Options{
		MinScore:            180,
		LengthPenaltyFactor: 2,
		LengthPenaltyCap:    80,
		ZeroingShortcuts:    true,
	}
}

// Loose always returns the best candidate and rewards platform overlap.
func Loose() Options {
	return Options{
		LengthPenaltyFactor: 1.5,
		LengthPenaltyCap:    50,
		PlatformScoring:     true,
	}
}

// Identity describes a locally known game to resolve.
type Identity struct {
	Name           string   `json:"name"`
	AlternateNames []string `json:"altNames,omitempty"`
	Year           int      `json:"year,omitempty"`
	Platforms      []string `json:"platforms,omitempty"`
}

// Validate trims the name and rejects blank identities.
func (id *Identity) Validate() error {
	id.Name = strings.TrimSpace(id.Name)
	if id.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Names returns the primary name followed by the alternates.
func (id Identity) Names() []string {
	return append([]string{id.Name}, id.AlternateNames...)
}

// Key identifies the identity for caching; order of alternates and
// platforms does not matter.
func (id Identity) Key() string {
	plats := make([]string, 0, len(id.Platforms))
	for _, p := range id.Platforms {
		plats = append(plats, Normalize(p))
	}
	sort.Strings(plats)
	return id.NameKey() + "|" + strings.Join(plats, ",")
}

// NameKey is Key without platforms, for engines that never score them.
func (id Identity) NameKey() string {
	alts := make([]string, 0, len(id.AlternateNames))
	for _, a := range id.AlternateNames {
		alts = append(alts, Normalize(a))
	}
	sort.Strings(alts)
	return fmt.Sprintf("%s|%s|%d", Normalize(id.Name), strings.Join(alts, ","), id.Year)
}

// Candidate is one search result reduced to the fields the ranker reads.
type Candidate struct {
	ID         string
	Title      string
	Aliases    string // comma separated, as delivered by the provider
	Year       int
	Platforms  string
	Popularity int
}

// AliasList splits Aliases on commas, dropping blanks.
func (c Candidate) AliasList() []string {
	if c.Aliases == "" {
		return nil
	}
	var out []string
	for _, a := range strings.Split(c.Aliases, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Scored pairs a candidate with its composite score.
type Scored struct {
	Candidate
	Index int // position in the input slice
	Score float64
}

func (s Scored) String() string {
	return s.Title + " (" + strconv.FormatFloat(s.Score, 'f', 1, 64) + ")"
}

// Engine scores candidates against an identity.
type Engine struct {
	vocab *Vocabulary
	opts  Options
}

// NewEngine creates an engine. A nil vocabulary selects the default.
func NewEngine(v *Vocabulary, opts Options) *Engine {
	if v == nil {
		v = DefaultVocabulary()
	}
	return &Engine{vocab: v, opts: opts}
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Vocabulary returns the engine's word lists.
func (e *Engine) Vocabulary() *Vocabulary {
	return e.vocab
}

// Score combines name similarity with release-year proximity, platform
// overlap and popularity.
func (e *Engine) Score(c Candidate, id Identity) float64 {
	base := e.BestNameScore(c, id.Names())
	if e.opts.MinScore > 0 && base < e.opts.MinScore {
		return Rejected
	}

	s := base + YearBonus(id.Year, c.Year)
	if e.opts.PlatformScoring {
		s += e.PlatformBonus(id.Platforms, c.Platforms)
	}
	s += PopularityBonus(c.Popularity)
	return s
}

// Rank scores every candidate, drops those under the minimum score and
// orders the rest by score, keeping input order between equal scores.
func (e *Engine) Rank(cands []Candidate, id Identity) []Scored {
	scored := make([]Scored, 0, len(cands))
	for i, c := range cands {
		s := e.Score(c, id)
		if e.opts.MinScore > 0 && s < e.opts.MinScore {
			continue
		}
		scored = append(scored, Scored{Candidate: c, Index: i, Score: s})
	}
	slices.SortStableFunc(scored, func(a, b Scored) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return scored
}

// Best returns the top ranked candidate, if any survives ranking.
func (e *Engine) Best(cands []Candidate, id Identity) (Scored, bool) {
	ranked := e.Rank(cands, id)
	if len(ranked) == 0 {
		return Scored{}, false
	}
	return ranked[0], true
}

// YearBonus rewards release-year proximity. Unknown years score nothing.
func YearBonus(want, got int) float64 {
	if want == 0 || got == 0 {
		return 0
	}
	diff := want - got
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 100
	case 1:
		return 60
	case 2:
		return 20
	}
	return -15 * float64(diff)
}

// PopularityBonus rewards well-known entries.
func PopularityBonus(count int) float64 {
	switch {
	case count > 1000:
		return 20
	case count > 100:
		return 10
	}
	return 0
}

// PlatformBonus is the fraction of requested platforms found in the
// candidate's platform label, either literally or through a shared
// platform family, times PlatformWeight.
func (e *Engine) PlatformBonus(requested []string, label string) float64 {
	if len(requested) == 0 || label == "" {
		return 0
	}
	ln := Normalize(label)
	labelFamilies := e.vocab.Families(ln)

	hits := 0
	for _, p := range requested {
		pn := Normalize(p)
		if pn == "" {
			continue
		}
		if strings.Contains(ln, pn) {
			hits++
			continue
		}
		for f := range e.vocab.Families(pn) {
			if _, ok := labelFamilies[f]; ok {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(requested)) * PlatformWeight
}
