package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"legiscrape/lib/configutil"
	"legiscrape/lib/fetch"
	"legiscrape/lib/personstore"
	"legiscrape/lib/scraper"
	"legiscrape/lib/scrapers"
)

const defaultDb = "legiscrape.db"

type Config struct {
	Fetch fetch.Config       `json:"fetch" yaml:"fetch"`
	Store personstore.Config `json:"store" yaml:"store"`
	// jurisdiction code -> overrides of its built in config
	Jurisdictions map[string]scraper.Config `json:"jurisdictions" yaml:"jurisdictions"`
}

// readConfig reads the config file at path, a missing file is the same
// as an empty one.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	if url := os.Getenv("LEGISCRAPE_STORE_URL"); url != "" {
		cfg.Store.Url = url
	}
	if token := os.Getenv("LEGISCRAPE_STORE_AUTH_TOKEN"); token != "" {
		cfg.Store.AuthToken = token
	}
	if cfg.Store.File == "" && cfg.Store.Url == "" {
		cfg.Store.File = defaultDb
	}
	return cfg, nil
}

// storeConfig is the configured store unless db names a local file.
func (c Config) storeConfig(db string) personstore.Config {
	if db != "" {
		return personstore.Config{File: db}
	}
	return c.Store
}

func apiKeyEnv(code string) string {
	return fmt.Sprintf("LEGISCRAPE_%s_API_KEY", strings.ToUpper(code))
}

// jurisdictionConfig is the built in config of j with the config file's
// overrides merged over it.
func (c Config) jurisdictionConfig(j scrapers.Jurisdiction) (scraper.Config, error) {
	cfg := j.Defaults()
	if override, ok := c.Jurisdictions[j.Code]; ok {
		merged, err := configutil.Merge(cfg, override)
		if err != nil {
			return scraper.Config{}, fmt.Errorf("merge %s config: %w", j.Code, err)
		}
		cfg = merged
	}
	if key := os.Getenv(apiKeyEnv(j.Code)); key != "" {
		cfg.ApiKey = key
	}
	return cfg, nil
}
