package hltb

import (
	"math"
	"strconv"

	"github.com/ryanm101/gameid/internal/match"
)

// Game is one finder record. Times are in seconds.
type Game struct {
	ID              int    `json:"game_id"`
	Name            string `json:"game_name"`
	Alias           string `json:"game_alias"`
	Image           string `json:"game_image"`
	ReleaseYear     int    `json:"release_world"`
	ReviewScore     int    `json:"review_score"`
	Platforms       string `json:"profile_platform"`
	CompletionCount int    `json:"count_comp"`
	CompMain        int    `json:"comp_main"`
	CompPlus        int    `json:"comp_plus"`
	Comp100         int    `json:"comp_100"`
	CompAll         int    `json:"comp_all"`
}

// Key returns the identifier used to merge results across variants.
func (g Game) Key() string {
	return strconv.Itoa(g.ID)
}

// Candidate reduces g to the fields the ranker reads.
func (g Game) Candidate() match.Candidate {
	return match.Candidate{
		ID:         g.Key(),
		Title:      g.Name,
		Aliases:    g.Alias,
		Year:       g.ReleaseYear,
		Platforms:  g.Platforms,
		Popularity: g.CompletionCount,
	}
}

// Times holds completion times in hours; nil means unknown.
type Times struct {
	Main          *float64 `json:"main"`
	MainExtra     *float64 `json:"mainExtra"`
	Completionist *float64 `json:"completionist"`
	AllStyles     *float64 `json:"allStyles"`
}

// Result is the resolved game as returned to API callers.
type Result struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Image       *string `json:"image"`
	ReleaseYear int     `json:"releaseYear"`
	ReviewScore int     `json:"reviewScore"`
	Platforms   string  `json:"platforms"`
	Times       Times   `json:"times"`
}

// NewResult converts a finder record into a Result. Image paths are made
// absolute against baseURL.
func NewResult(g Game, baseURL string) Result {
	r := Result{
		ID:          g.ID,
		Name:        g.Name,
		ReleaseYear: g.ReleaseYear,
		ReviewScore: g.ReviewScore,
		Platforms:   g.Platforms,
		Times: Times{
			Main:          hours(g.CompMain),
			MainExtra:     hours(g.CompPlus),
			Completionist: hours(g.Comp100),
			AllStyles:     hours(g.CompAll),
		},
	}
	if g.Image != "" {
		img := baseURL + "/games/" + g.Image
		r.Image = &img
	}
	return r
}

// hours converts seconds to hours rounded to one decimal.
func hours(sec int) *float64 {
	if sec <= 0 {
		return nil
	}
	h := math.Round(float64(sec)/3600*10) / 10
	return &h
}
