package hltb

// finderRequest mirrors the body the HLTB web client posts to /api/finder.
type finderRequest struct {
	SearchType    string        `json:"searchType"`
	SearchTerms   []string      `json:"searchTerms"`
	SearchPage    int           `json:"searchPage"`
	Size          int           `json:"size"`
	SearchOptions searchOptions `json:"searchOptions"`
	UseCache      bool          `json:"useCache"`
}

type searchOptions struct {
	Games      gameOptions `json:"games"`
	Users      sortOption  `json:"users"`
	Lists      sortOption  `json:"lists"`
	Filter     string      `json:"filter"`
	Sort       int         `json:"sort"`
	Randomizer int         `json:"randomizer"`
}

type gameOptions struct {
	UserID        int       `json:"userId"`
	Platform      string    `json:"platform"`
	SortCategory  string    `json:"sortCategory"`
	RangeCategory string    `json:"rangeCategory"`
	RangeTime     rangeTime `json:"rangeTime"`
	Gameplay      gameplay  `json:"gameplay"`
	RangeYear     rangeYear `json:"rangeYear"`
	Modifier      string    `json:"modifier"`
}

type rangeTime struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

type rangeYear struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type gameplay struct {
	Perspective string `json:"perspective"`
	Flow        string `json:"flow"`
	Genre       string `json:"genre"`
	Difficulty  string `json:"difficulty"`
}

type sortOption struct {
	SortCategory string `json:"sortCategory"`
}

func newFinderRequest(terms []string, size int) finderRequest {
	if terms == nil {
		terms = []string{}
	}
	return finderRequest{
		SearchType:  "games",
		SearchTerms: terms,
		SearchPage:  1,
		Size:        size,
		SearchOptions: searchOptions{
			Games: gameOptions{
				SortCategory:  "popular",
				RangeCategory: "main",
			},
			Users: sortOption{SortCategory: "postcount"},
			Lists: sortOption{SortCategory: "follows"},
		},
		UseCache: true,
	}
}
