package main

import (
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryanm101/gameid/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached results per provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := db.Open(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer closeStore(store)

		counts, err := store.CountResolvedGames(cmd.Context())
		if err != nil {
			return err
		}

		providers := make([]string, 0, len(counts))
		for p := range counts {
			providers = append(providers, p)
		}
		sort.Strings(providers)

		rows := make([][]string, 0, len(providers))
		for _, p := range providers {
			rows = append(rows, []string{p, strconv.Itoa(counts[p])})
		}
		PrintTable([]string{"PROVIDER", "CACHED"}, rows)
		return nil
	},
}

var (
	purgeOlderThan time.Duration
	purgeProvider  string
)

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached results older than a given age",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := db.Open(cmd.Context(), cfg.DBPath)
		if err != nil {
			return err
		}
		defer closeStore(store)

		age := purgeOlderThan
		if age == 0 {
			age = cfg.Cache.TTL
		}
		n, err := store.PurgeResolvedGames(cmd.Context(), purgeProvider, time.Now().Add(-age))
		if err != nil {
			return err
		}

		if outputCfg.JSON {
			PrintResult(map[string]int64{"purged": n})
			return nil
		}
		PrintInfo("Purged %d cached results\n", n)
		return nil
	},
}

func init() {
	cachePurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 0, "Age cutoff (default: cache.ttl)")
	cachePurgeCmd.Flags().StringVar(&purgeProvider, "provider", "", "Only purge this provider (hltb or igdb)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
