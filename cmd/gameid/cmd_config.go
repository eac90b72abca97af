package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ryanm101/gameid/internal/config"
)

const configPath = ".gameid.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		shown := redacted(cfg)
		if outputCfg.JSON {
			PrintResult(shown)
			return nil
		}

		data, err := yaml.Marshal(shown)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}

		fmt.Println("# Active Configuration")
		fmt.Println(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated config file to " + configPath,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return errors.Newf("config file already exists at %s", configPath)
		}

		if err := os.WriteFile(configPath, []byte(config.Example), 0o644); err != nil {
			return errors.Wrap(err, "failed to write config")
		}

		if outputCfg.JSON {
			PrintResult(map[string]string{"path": configPath, "status": "created"})
		} else {
			PrintInfo("Created %s\n", configPath)
		}
		return nil
	},
}

// redacted returns a copy of c safe to print.
func redacted(c *config.Config) config.Config {
	out := *c
	if out.IGDB.ClientSecret != "" {
		out.IGDB.ClientSecret = "********"
	}
	return out
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
