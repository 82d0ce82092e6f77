package ny

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/pdfcolumns"
)

// rosterOptions reads the roster layout out of the selectors so a new
// year's document can be handled from the config file.
func (s *Scraper) rosterOptions() (pdfcolumns.Options, error) {
	column, err := strconv.Atoi(s.cfg.Selector("roster_column"))
	if err != nil {
		return pdfcolumns.Options{}, fmt.Errorf("roster_column: %w", err)
	}
	header, err := regexp.Compile(s.cfg.Selector("roster_header"))
	if err != nil {
		return pdfcolumns.Options{}, fmt.Errorf("roster_header: %w", err)
	}
	opts := pdfcolumns.Options{Column: column, Header: header}
	if banner := s.cfg.Selector("roster_banner"); banner != "" {
		opts.PageHeader, err = regexp.Compile(banner)
		if err != nil {
			return pdfcolumns.Options{}, fmt.Errorf("roster_banner: %w", err)
		}
		// the banner is followed by a title and a blank line
		opts.PageHeaderSkip = 2
	}
	return opts, nil
}

func (s *Scraper) assemblyParties(ctx context.Context) (map[string]string, error) {
	if s.parties != nil {
		return s.parties, nil
	}
	opts, err := s.rosterOptions()
	if err != nil {
		return nil, err
	}
	pdf, err := s.client.Bytes(ctx, s.cfg.URL("roster"), fetch.Request{})
	if err != nil {
		return nil, err
	}
	text, err := s.Converter.Convert(ctx, pdf)
	if err != nil {
		return nil, err
	}
	parties, err := RosterParties(text, opts)
	if err != nil {
		return nil, err
	}
	s.parties = parties
	return parties, nil
}

// RosterParties maps assembly district to party from the converted
// roster. Entries look like
//
//	Member of Assembly 12
//	Party: Republican
//	Jane Doe
//
// and vacant seats have "Vacant" in place of the name.
func RosterParties(text string, opts pdfcolumns.Options) (map[string]string, error) {
	parties := map[string]string{}
	for _, entry := range pdfcolumns.Recover(pdfcolumns.SplitLines(text), opts) {
		m := opts.Header.FindStringSubmatch(entry[0])
		if len(m) < 2 {
			continue
		}
		district := m[1]
		if len(entry) > 2 && entry[2] == "Vacant" {
			continue
		}
		party := ""
		if len(entry) > 1 {
			_, party, _ = strings.Cut(entry[1], ": ")
			party = strings.TrimSpace(party)
		}
		if party == "" {
			return nil, fmt.Errorf("no party for assembly district %s", district)
		}
		n, err := strconv.Atoi(district)
		if err != nil || n < 1 || n > assemblySeats {
			return nil, fmt.Errorf("bad assembly district %q", district)
		}
		if _, ok := parties[district]; ok {
			return nil, fmt.Errorf("assembly district %s listed twice", district)
		}
		parties[district] = party
	}
	return parties, nil
}
