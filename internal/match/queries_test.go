package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQueries_LongTitle(t *testing.T) {
	v := DefaultVocabulary()

	got := v.BuildQueries("The Legend of Zelda: Breath of the Wild", []string{"Zelda BOTW"})

	assert.Equal(t, [][]string{
		{"the", "legend", "of", "zelda", "breath", "of", "the", "wild"},
		{"legend", "zelda", "breath", "wild"},
		{"the", "legend", "of", "zelda", "breath", "of", "the"},
		{"legend", "zelda", "breath"},
		{"the", "legend", "of", "zelda", "breath"},
		{"zelda", "botw"},
	}, got)
}

func TestBuildQueries_ShortTitleDeduplicated(t *testing.T) {
	v := DefaultVocabulary()

	// Full and noise-stripped forms are identical, so only one survives.
	got := v.BuildQueries("Celeste", nil)
	assert.Equal(t, [][]string{{"celeste"}}, got)
}

func TestBuildQueries_AlternatesShareDedup(t *testing.T) {
	v := DefaultVocabulary()

	got := v.BuildQueries("Hades", []string{"HADES", "Hadès"})
	assert.Equal(t, [][]string{{"hades"}}, got)
}

func TestBuildQueries_NothingSearchable(t *testing.T) {
	v := DefaultVocabulary()

	assert.Empty(t, v.BuildQueries("X", nil))
}

func TestBuildQueries_NoEmptyOrDuplicate(t *testing.T) {
	v := DefaultVocabulary()

	inputs := []struct {
		name string
		alts []string
	}{
		{"The Elder Scrolls V: Skyrim Special Edition", []string{"Skyrim SE", "TES V"}},
		{"Ōkami HD", []string{"Okami", "大神"}},
		{"Grand Theft Auto: San Andreas – The Definitive Edition", nil},
		{"A", []string{"The", "Of"}},
		{"Metal Gear Solid 3: Snake Eater", []string{"MGS3", "Metal Gear Solid 3"}},
	}

	for _, in := range inputs {
		seen := map[string]bool{}
		for _, q := range v.BuildQueries(in.name, in.alts) {
			assert.NotEmpty(t, q, "input %q", in.name)
			key := strings.Join(q, "|")
			assert.False(t, seen[key], "duplicate variant %q for %q", key, in.name)
			seen[key] = true
		}
	}
}
