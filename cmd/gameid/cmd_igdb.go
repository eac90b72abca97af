package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var igdbCmd = &cobra.Command{
	Use:   "igdb",
	Short: "Match and search games on IGDB",
	Long: `Match and search games on IGDB.

Requires igdb.client_id and igdb.client_secret in the config file, or
IGDB_CLIENT_ID and IGDB_CLIENT_SECRET in the environment.`,
}

var igdbMatchCmd = &cobra.Command{
	Use:   "match <name>",
	Short: "Find the closest IGDB game",
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

		svc, err := newIGDBService(vocab, store)
		if err != nil {
			return err
		}
		g, err := svc.Match(ctx, identityFromArgs(args))
		if err != nil {
			return err
		}

		if outputCfg.JSON {
			PrintResult(g)
			return nil
		}
		fmt.Printf("%s (%d)  id=%d slug=%s\n", g.Name, g.Year, g.ID, g.Slug)
		if len(g.Platforms) > 0 {
			PrintInfo("Platforms: %s\n", strings.Join(g.Platforms, ", "))
		}
		if g.Cover != "" {
			PrintInfo("Cover: %s\n", g.Cover)
		}
		return nil
	},
}

var igdbAutocompleteCmd = &cobra.Command{
	Use:   "autocomplete <query>",
	Short: "Show type-ahead suggestions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}
		svc, err := newIGDBService(vocab, nil)
		if err != nil {
			return err
		}
		suggestions, err := svc.Autocomplete(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if outputCfg.JSON {
			PrintResult(suggestions)
			return nil
		}
		rows := make([][]string, 0, len(suggestions))
		for _, s := range suggestions {
			year := "-"
			if s.Year != nil {
				year = strconv.Itoa(*s.Year)
			}
			rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, year, fmt.Sprintf("%.0f", s.Relevance)})
		}
		PrintTable([]string{"ID", "NAME", "YEAR", "RELEVANCE"}, rows)
		return nil
	},
}

func init() {
	addIdentityFlags(igdbMatchCmd, true)
	igdbCmd.AddCommand(igdbMatchCmd)
	igdbCmd.AddCommand(igdbAutocompleteCmd)
}
