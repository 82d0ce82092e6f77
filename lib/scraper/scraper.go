// Package scraper holds what every jurisdiction shares: the Extractor
// contract a site implements, the step that turns raw strings into a
// person.Record, and the Driver that runs a jurisdiction end to end.
//
// Extractors only ever lift raw strings off pages. They make no decision
// about what a valid phone number or party is, that all happens in Build
// so the rules are the same for every site.
package scraper

import (
	"context"
	"errors"
	"fmt"

	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
)

// Entry is one row of a listing page.
type Entry struct {
	Chamber person.Chamber
	// identifies the seat in logs, usually the district
	ID  string
	URL string
	// listing text checked for vacancy markers before any detail fetch
	Notice string
	Fields map[string]string
}

func (e Entry) Field(key string) string {
	return e.Fields[key]
}

type Office struct {
	Note    string
	Address []string
	Phone   string
	Fax     string
	Email   string
}

// Raw is everything an extractor found about one legislator, as written
// on the page.
type Raw struct {
	Name      string
	NameOrder normalize.NameOrder
	District  string
	Party     string
	PhotoURL  string
	Offices   []Office
	Sources   []string
	Links     []string
}

type Extractor interface {
	Listing(ctx context.Context, chamber person.Chamber) ([]Entry, error)
	Detail(ctx context.Context, entry Entry) (Raw, error)
}

// ErrSkip marks an entry the extractor decided should not produce a
// record. The driver logs it and moves on.
var ErrSkip = errors.New("skipped")

func Skip(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSkip, fmt.Sprintf(format, args...))
}
