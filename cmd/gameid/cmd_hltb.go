package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryanm101/gameid/internal/hltb"
	"github.com/ryanm101/gameid/internal/match"
)

var identityFlags struct {
	alts      []string
	year      int
	platforms []string
	noCache   bool
}

func addIdentityFlags(cmd *cobra.Command, withPlatforms bool) {
	cmd.Flags().StringArrayVar(&identityFlags.alts, "alt", nil, "Alternate name (repeatable)")
	cmd.Flags().IntVar(&identityFlags.year, "year", 0, "Release year")
	cmd.Flags().BoolVar(&identityFlags.noCache, "no-cache", false, "Bypass the result cache")
	if withPlatforms {
		cmd.Flags().StringArrayVar(&identityFlags.platforms, "platform", nil, "Owned platform (repeatable)")
	}
}

func identityFromArgs(args []string) match.Identity {
	return match.Identity{
		Name:           strings.Join(args, " "),
		AlternateNames: identityFlags.alts,
		Year:           identityFlags.year,
		Platforms:      identityFlags.platforms,
	}
}

var hltbCmd = &cobra.Command{
	Use:   "hltb <name>",
	Short: "Look up completion times on HowLongToBeat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}
		store, err := openStore(ctx, !identityFlags.noCache)
		if err != nil {
			return err
		}
		defer closeStore(store)

		res, err := newHLTBService(vocab, store).Find(ctx, identityFromArgs(args))
		if err != nil {
			return err
		}

		if outputCfg.JSON {
			PrintResult(res)
			return nil
		}
		printHLTBResult(res)
		return nil
	},
}

func init() {
	addIdentityFlags(hltbCmd, false)
}

func printHLTBResult(r *hltb.Result) {
	fmt.Printf("%s (%d)  id=%d\n", r.Name, r.ReleaseYear, r.ID)
	if r.Platforms != "" {
		PrintInfo("Platforms: %s\n", r.Platforms)
	}
	PrintTable([]string{"STYLE", "HOURS"}, [][]string{
		{"Main", formatHours(r.Times.Main)},
		{"Main + Extra", formatHours(r.Times.MainExtra)},
		{"Completionist", formatHours(r.Times.Completionist)},
		{"All Styles", formatHours(r.Times.AllStyles)},
	})
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *h)
}
