package scraper

import (
	"fmt"

	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
)

// Config is the per jurisdiction lookup data. It is built once before a
// run and only read afterwards.
type Config struct {
	Parties normalize.PartyTable `json:"parties" yaml:"parties"`
	Phone   normalize.PhoneRules `json:"phone" yaml:"phone"`
	// chamber -> the label the site uses for it ("Senate", "House")
	Chambers  map[person.Chamber]string `json:"chambers" yaml:"chambers"`
	URLs      map[string]string         `json:"urls" yaml:"urls"`
	Selectors map[string]string         `json:"selectors" yaml:"selectors"`
	Session   string                    `json:"session" yaml:"session"`
	ApiKey    string                    `json:"api_key" yaml:"api_key"`
}

// ChamberList is the chambers the jurisdiction has, upper first.
func (c Config) ChamberList() []person.Chamber {
	var out []person.Chamber
	for _, chamber := range []person.Chamber{person.Upper, person.Lower} {
		if _, ok := c.Chambers[chamber]; ok {
			out = append(out, chamber)
		}
	}
	return out
}

func (c Config) Label(chamber person.Chamber) string {
	if label, ok := c.Chambers[chamber]; ok {
		return label
	}
	return string(chamber)
}

func (c Config) URL(key string) string {
	return c.URLs[key]
}

// URLf formats the url template key with args.
func (c Config) URLf(key string, args ...any) string {
	return fmt.Sprintf(c.URLs[key], args...)
}

func (c Config) Selector(key string) string {
	return c.Selectors[key]
}

// ChamberURL looks up "<key>.<chamber>", falling back to key.
func (c Config) ChamberURL(key string, chamber person.Chamber) string {
	if u, ok := c.URLs[key+"."+string(chamber)]; ok {
		return u
	}
	return c.URLs[key]
}

// ChamberSelector looks up "<key>.<chamber>", falling back to key.
func (c Config) ChamberSelector(key string, chamber person.Chamber) string {
	if s, ok := c.Selectors[key+"."+string(chamber)]; ok {
		return s
	}
	return c.Selectors[key]
}
