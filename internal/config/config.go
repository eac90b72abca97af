package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/tracing"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	DBPath         string         `yaml:"db_path"`
	VocabularyPath string         `yaml:"vocabulary_path,omitempty"`
	HTTP           HTTPConfig     `yaml:"http"`
	Logging        logging.Config `yaml:"logging"`
	Tracing        tracing.Config `yaml:"tracing"`
	HLTB           HLTBConfig     `yaml:"hltb"`
	IGDB           IGDBConfig     `yaml:"igdb"`
	Cache          CacheConfig    `yaml:"cache"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// HLTBConfig configures the completion-time provider.
type HLTBConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	PageSize  int           `yaml:"page_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// IGDBConfig configures the game database provider.
type IGDBConfig struct {
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Limit             int     `yaml:"limit"`
}

// CacheConfig configures the resolved-result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// DefaultUserAgent is sent to providers that reject non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DBPath: "gameid.db",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Tracing: tracing.DefaultConfig(),
		HLTB: HLTBConfig{
			BaseURL:   "https://howlongtobeat.com",
			UserAgent: DefaultUserAgent,
			TokenTTL:  30 * time.Minute,
			PageSize:  20,
			Timeout:   15 * time.Second,
		},
		IGDB: IGDBConfig{
			RequestsPerSecond: 4,
			Limit:             15,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
	}
}

// configPaths returns the list of paths to search for a config file.
func configPaths() []string {
	paths := []string{
		".gameid.yaml",
		".gameid.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gameid", "config.yaml"),
			filepath.Join(home, ".config", "gameid", "config.yml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env GAMEID_CONFIG > search paths > defaults; env overrides last.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if envPath := os.Getenv("GAMEID_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path from env or fixed search list
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GAMEID_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("GAMEID_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("GAMEID_VOCABULARY"); v != "" {
		c.VocabularyPath = v
	}
	if v := os.Getenv("GAMEID_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IGDB_CLIENT_ID"); v != "" {
		c.IGDB.ClientID = v
	}
	if v := os.Getenv("IGDB_CLIENT_SECRET"); v != "" {
		c.IGDB.ClientSecret = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = v
	}
}

// IGDBEnabled reports whether IGDB credentials are configured.
func (c *Config) IGDBEnabled() bool {
	return c.IGDB.ClientID != "" && c.IGDB.ClientSecret != ""
}

// Example is the annotated file written by "config init".
const Example = `# gameid configuration
db_path: gameid.db

# Optional override for noise words and platform families
# vocabulary_path: vocabulary.yaml

http:
  addr: ":8080"

logging:
  level: info   # debug, info, warn, error
  format: text  # text or json

hltb:
  base_url: https://howlongtobeat.com
  token_ttl: 30m
  page_size: 20

igdb:
  client_id: ""       # or IGDB_CLIENT_ID
  client_secret: ""   # or IGDB_CLIENT_SECRET
  requests_per_second: 4

cache:
  enabled: true
  ttl: 24h
`
