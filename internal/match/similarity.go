package match

import (
	"math"
	"strings"
)

// Tiered similarity scores. The first matching relation wins.
const (
	ExactScore      = 500.0
	CleanExactScore = 450.0

	boundaryPrefixScore      = 350.0
	cleanBoundaryPrefixScore = 320.0
	prefixScore              = 300.0
	cleanPrefixScore         = 280.0
	containsScore            = 200.0
	cleanContainsScore       = 180.0

	overlapWeight = 100.0

	// Below this overlap ratio a candidate without a strong string
	// relation is treated as unrelated when shortcuts are enabled.
	minOverlapRatio   = 0.3
	strongRelationMin = 200.0
)

// Similarity scores how closely title a (typically the candidate) matches
// title b (typically the name being resolved). Identical normalized titles
// score ExactScore; otherwise a tiered prefix/containment score plus a
// token-overlap bonus, minus a length-difference penalty.
func (e *Engine) Similarity(a, b string) float64 {
	an, bn := Normalize(a), Normalize(b)
	if an == bn {
		return ExactScore
	}
	ac, bc := e.vocab.StripNoise(a), e.vocab.StripNoise(b)
	if ac == bc {
		return CleanExactScore
	}

	s := relationScore(an, bn, ac, bc)

	aw := filterShort(splitTokens(ac), MinTokenLen)
	bw := filterShort(splitTokens(bc), MinTokenLen)

	if len(bw) > 0 {
		ratio := float64(looseOverlap(aw, bw)) / float64(len(bw))
		s += ratio * overlapWeight
		if e.opts.ZeroingShortcuts && ratio < minOverlapRatio && s < strongRelationMin {
			return 0
		}
	}

	diff := math.Abs(float64(runeLen(ac) - runeLen(bc)))
	s -= math.Min(diff*e.opts.LengthPenaltyFactor, e.opts.LengthPenaltyCap)

	if e.opts.ZeroingShortcuts && s > 0 && exactOverlap(aw, bw) == 0 {
		return 0
	}
	return s
}

func relationScore(an, bn, ac, bc string) float64 {
	switch {
	case boundaryPrefix(an, bn):
		return boundaryPrefixScore
	case boundaryPrefix(ac, bc):
		return cleanBoundaryPrefixScore
	case eitherPrefix(an, bn):
		return prefixScore
	case eitherPrefix(ac, bc):
		return cleanPrefixScore
	case eitherContains(an, bn):
		return containsScore
	case eitherContains(ac, bc):
		return cleanContainsScore
	}
	return 0
}

func boundaryPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b+" ") || strings.HasPrefix(b, a+" ")
}

func eitherPrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

func eitherContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// looseOverlap counts tokens of bw equal to, or a substring/superstring
// of, some token in aw.
func looseOverlap(aw, bw []string) int {
	matched := 0
	for _, w := range bw {
		for _, x := range aw {
			if x == w || strings.Contains(x, w) || strings.Contains(w, x) {
				matched++
				break
			}
		}
	}
	return matched
}

// exactOverlap counts tokens of bw that appear verbatim in aw.
func exactOverlap(aw, bw []string) int {
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(aw))
	for _, x := range aw {
		set[x] = struct{}{}
	}
	matched := 0
	for _, w := range bw {
		if _, ok := set[w]; ok {
			matched++
		}
	}
	return matched
}

// BestNameScore compares the candidate title and each of its comma
// separated aliases against every name and returns the highest score.
// It never returns less than zero.
func (e *Engine) BestNameScore(c Candidate, names []string) float64 {
	best := 0.0
	titles := append([]string{c.Title}, c.AliasList()...)
	for _, t := range titles {
		for _, n := range names {
			best = math.Max(best, e.Similarity(t, n))
		}
	}
	return best
}
