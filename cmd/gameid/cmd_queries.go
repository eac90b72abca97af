package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanm101/gameid/internal/igdb"
	"github.com/ryanm101/gameid/internal/match"
)

var queryAlts []string

var queriesCmd = &cobra.Command{
	Use:   "queries <name>",
	Short: "Show the HowLongToBeat search variants for a title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}

		variants := vocab.BuildQueries(strings.Join(args, " "), queryAlts)
		if outputCfg.JSON {
			PrintResult(variants)
			return nil
		}
		lines := make([]string, len(variants))
		for i, v := range variants {
			lines[i] = strings.Join(v, " ")
		}
		PrintResult(lines)
		return nil
	},
}

var variationsFilter bool

var variationsCmd = &cobra.Command{
	Use:   "variations <query>",
	Short: "Show the IGDB lexical variations for a title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		q := strings.Join(args, " ")
		if variationsFilter {
			PrintResult(igdb.NameFilter(q))
			return nil
		}
		PrintResult(igdb.Variations(q))
		return nil
	},
}

var scoreLoose bool

var scoreCmd = &cobra.Command{
	Use:   "score <a> <b>",
	Short: "Show the name similarity between two titles",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}

		opts := match.Strict()
		if scoreLoose {
			opts = match.Loose()
		}
		e := match.NewEngine(vocab, opts)
		score := e.Similarity(args[0], args[1])

		if outputCfg.JSON {
			PrintResult(map[string]any{
				"a":          args[0],
				"b":          args[1],
				"normalized": []string{match.Normalize(args[0]), match.Normalize(args[1])},
				"score":      score,
			})
			return nil
		}
		PrintInfo("%q vs %q\n", match.Normalize(args[0]), match.Normalize(args[1]))
		fmt.Printf("%.1f\n", score)
		return nil
	},
}

func init() {
	queriesCmd.Flags().StringArrayVar(&queryAlts, "alt", nil, "Alternate name (repeatable)")
	scoreCmd.Flags().BoolVar(&scoreLoose, "loose", false, "Use the loose engine settings")
	variationsCmd.Flags().BoolVar(&variationsFilter, "filter", false, "Print the IGDB where-clause instead")
}
