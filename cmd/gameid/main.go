package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/baggage"

	"github.com/ryanm101/gameid/internal/config"
	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/tracing"
)

const version = "0.3.0"

var (
	cfg             *config.Config
	configFlag      string
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "gameid",
	Short: "Resolve game titles against external game catalogues",
	Long: `gameid matches a locally known game (name, alternate names, release year,
platforms) against HowLongToBeat and IGDB search results.

Examples:
  gameid hltb "The Legend of Zelda" --alt Zelda --year 1986
  gameid igdb match Hades --platform Switch
  gameid igdb autocomplete "hollow kn"
  gameid queries "Final Fantasy VII Remake"
  gameid serve`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if configFlag != "" {
			if err := os.Setenv("GAMEID_CONFIG", configFlag); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = config.DefaultConfig()
		}

		logging.Setup(cfg.Logging)

		shutdown, err := tracing.Setup(cmd.Context(), cfg.Tracing)
		if err != nil {
			logging.Error("failed to setup tracing", "error", err)
			return nil
		}
		shutdownTracing = shutdown
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: .gameid.yaml, ~/.config/gameid/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&outputCfg.JSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVarP(&outputCfg.Quiet, "quiet", "q", false, "Suppress informational output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hltbCmd)
	rootCmd.AddCommand(igdbCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(variationsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx := context.Background()

	m, _ := baggage.NewMember("app.version", version)
	b, _ := baggage.New(m)
	ctx = baggage.ContextWithBaggage(ctx, b)

	err := rootCmd.ExecuteContext(ctx)

	if serr := shutdownTracing(ctx); serr != nil {
		logging.Error("failed to shutdown tracing", "error", serr)
	}
	if err != nil {
		PrintError("Error: %v\n", err)
		os.Exit(1)
	}
}
