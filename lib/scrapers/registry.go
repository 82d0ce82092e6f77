// Package scrapers registers every jurisdiction's extractor under its
// postal code.
package scrapers

import (
	"fmt"
	"sort"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/scraper"
	"legiscrape/lib/scrapers/ak"
	"legiscrape/lib/scrapers/fl"
	"legiscrape/lib/scrapers/indiana"
	"legiscrape/lib/scrapers/la"
	"legiscrape/lib/scrapers/md"
	"legiscrape/lib/scrapers/mn"
	"legiscrape/lib/scrapers/mt"
	"legiscrape/lib/scrapers/nc"
	"legiscrape/lib/scrapers/ny"
)

type Jurisdiction struct {
	Code string
	Name string
	// the built in lookup tables, selectors and urls, the config file is
	// merged over these
	Defaults func() scraper.Config
	New      func(client *fetch.Client, cfg scraper.Config) scraper.Extractor
}

var Registry = map[string]Jurisdiction{
	"ak": {
		Code:     "ak",
		Name:     "Alaska",
		Defaults: ak.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return ak.New(client, cfg)
		},
	},
	"fl": {
		Code:     "fl",
		Name:     "Florida",
		Defaults: fl.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return fl.New(client, cfg)
		},
	},
	"in": {
		Code:     "in",
		Name:     "Indiana",
		Defaults: indiana.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return indiana.New(client, cfg)
		},
	},
	"la": {
		Code:     "la",
		Name:     "Louisiana",
		Defaults: la.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return la.New(client, cfg)
		},
	},
	"md": {
		Code:     "md",
		Name:     "Maryland",
		Defaults: md.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return md.New(client, cfg)
		},
	},
	"mn": {
		Code:     "mn",
		Name:     "Minnesota",
		Defaults: mn.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return mn.New(client, cfg)
		},
	},
	"mt": {
		Code:     "mt",
		Name:     "Montana",
		Defaults: mt.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return mt.New(client, cfg)
		},
	},
	"nc": {
		Code:     "nc",
		Name:     "North Carolina",
		Defaults: nc.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return nc.New(client, cfg)
		},
	},
	"ny": {
		Code:     "ny",
		Name:     "New York",
		Defaults: ny.Defaults,
		New: func(client *fetch.Client, cfg scraper.Config) scraper.Extractor {
			return ny.New(client, cfg)
		},
	},
}

func Lookup(code string) (Jurisdiction, error) {
	j, ok := Registry[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Jurisdiction{}, fmt.Errorf("unknown jurisdiction %q, known: %s", code, strings.Join(Codes(), ", "))
	}
	return j, nil
}

// Codes lists the registered codes in order.
func Codes() []string {
	codes := make([]string, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
