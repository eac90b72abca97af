package match

import (
	_ "embed"
	"os"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary holds the hand-curated word lists the matcher depends on.
type Vocabulary struct {
	Version          int                 `yaml:"version"`
	NoiseWords       []string            `yaml:"noise_words"`
	PlatformFamilies map[string][]string `yaml:"platform_families"`

	noise    map[string]struct{}
	families map[string]map[string]struct{}
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// DefaultVocabulary returns the vocabulary embedded in the binary.
func DefaultVocabulary() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := ParseVocabulary(defaultVocabularyYAML)
		if err != nil {
			panic(errors.Wrap(err, "embedded vocabulary"))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// LoadVocabulary reads a vocabulary file. An empty path yields the default.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator config
	if err != nil {
		return nil, errors.Wrapf(err, "read vocabulary %s", path)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "parse vocabulary")
	}
	if len(v.NoiseWords) == 0 {
		return nil, errors.New("vocabulary has no noise words")
	}
	v.index()
	return &v, nil
}

func (v *Vocabulary) index() {
	v.noise = make(map[string]struct{}, len(v.NoiseWords))
	for _, w := range v.NoiseWords {
		if n := Normalize(w); n != "" {
			v.noise[n] = struct{}{}
		}
	}

	v.families = make(map[string]map[string]struct{}, len(v.PlatformFamilies))
	for family, aliases := range v.PlatformFamilies {
		set := make(map[string]struct{}, len(aliases))
		for _, a := range aliases {
			if n := Normalize(a); n != "" {
				set[n] = struct{}{}
			}
		}
		v.families[family] = set
	}
}

// CacheKey scopes an identity key to this vocabulary version, so results
// matched under older word lists are not served after an upgrade.
func (v *Vocabulary) CacheKey(key string) string {
	return "v" + strconv.Itoa(v.Version) + "/" + key
}

// IsNoise reports whether a normalized token is a noise word.
func (v *Vocabulary) IsNoise(token string) bool {
	_, ok := v.noise[token]
	return ok
}

// Families returns the platform families any token of the normalized
// label belongs to.
func (v *Vocabulary) Families(label string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, tok := range splitTokens(label) {
		for family, aliases := range v.families {
			if _, ok := aliases[tok]; ok {
				found[family] = struct{}{}
			}
		}
	}
	return found
}
