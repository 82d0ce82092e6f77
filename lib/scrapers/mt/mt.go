// Package mt scrapes the Montana Legislature. The roster CSV names every
// seat, phones and emails come from member pages found through the
// legislator information table.
package mt

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"
	"legiscrape/lib/textutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("legiscrape.scrapers.mt")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"D": "Democratic",
			"R": "Republican",
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "406"},
		Chambers: map[person.Chamber]string{
			person.Upper: "SD",
			person.Lower: "HD",
		},
		URLs: map[string]string{
			"roster":  "https://leg.mt.gov/legislator-information/csv",
			"members": "https://leg.mt.gov/legislator-information/",
		},
		Selectors: map[string]string{
			"rows":    `//table[@id="reports-table"]/tbody/tr`,
			"cells":   `./td`,
			"link":    `./a`,
			"contact": `//div[contains(h4, "Contact Information")]/p`,
		},
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config

	// "HD 5" -> member page
	memberPages map[string]string
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

type rosterRow struct {
	LastName  string
	FirstName string
	Party     string
	Seat      string
	Address   string
	City      string
	State     string
	Zip       string
	Email     string
}

const rosterColumns = 9

// parseRoster reads the roster CSV. Some fields come wrapped in tripled
// quotes, which are collapsed before parsing.
func parseRoster(data []byte) ([]rosterRow, error) {
	data = bytes.ReplaceAll(data, []byte(`"""`), []byte(`"`))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var rows []rosterRow
	for first := true; ; first = false {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		// header
		if first {
			continue
		}
		if len(record) < rosterColumns {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, rosterRow{
			LastName:  record[0],
			FirstName: record[1],
			Party:     record[2],
			Seat:      record[3],
			Address:   record[4],
			City:      record[5],
			State:     record[6],
			Zip:       record[7],
			Email:     record[8],
		})
	}
	return rows, nil
}

// titleAddress title cases an all caps street address, keeping "PO".
func titleAddress(address string) string {
	words := strings.Fields(textutil.Title(address))
	for i, w := range words {
		if w == "Po" {
			words[i] = "PO"
		}
	}
	return strings.Join(words, " ")
}

func seatKey(seat string) string {
	return strings.Join(strings.Fields(seat), " ")
}

func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	pages, err := s.loadMemberPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("member table: %w", err)
	}
	rosterUrl := s.cfg.URL("roster")
	data, err := s.client.Bytes(ctx, rosterUrl, fetch.Request{})
	if err != nil {
		return nil, err
	}
	rows, err := parseRoster(data)
	if err != nil {
		return nil, err
	}

	seatType := s.cfg.Label(chamber)
	var entries []scraper.Entry
	for _, row := range rows {
		kind, district, ok := strings.Cut(seatKey(row.Seat), " ")
		if !ok || kind != seatType {
			continue
		}
		name := textutil.Title(row.FirstName) + " " + textutil.Title(row.LastName)
		entries = append(entries, scraper.Entry{
			Chamber: chamber,
			ID:      seatKey(row.Seat),
			URL:     pages[seatKey(row.Seat)],
			Notice:  name,
			Fields: map[string]string{
				"name":     name,
				"district": district,
				"party":    row.Party,
				"address":  titleAddress(row.Address),
				"city":     fmt.Sprintf("%s, %s %s", textutil.Title(row.City), row.State, row.Zip),
				"email":    row.Email,
				"roster":   rosterUrl,
			},
		})
	}
	return entries, nil
}

// loadMemberPages maps seats to member pages. Resigned members are left
// out so their roster rows find no page.
func (s *Scraper) loadMemberPages(ctx context.Context) (map[string]string, error) {
	if s.memberPages != nil {
		return s.memberPages, nil
	}
	doc, err := s.client.Document(ctx, s.cfg.URL("members"))
	if err != nil {
		return nil, err
	}
	rows, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("rows"))
	if err != nil {
		return nil, err
	}

	pages := map[string]string{}
	for i := range rows.Nodes {
		// email, name, party, seat, phone
		tds, err := htmlutil.XPath(rows.Eq(i), s.cfg.Selector("cells"))
		if err != nil {
			return nil, err
		}
		if tds.Length() < 5 {
			continue
		}
		name := htmlutil.Text(tds.Eq(1))
		if name == "" || person.IsVacantOrRetired(name) {
			continue
		}
		href, err := htmlutil.XPathAttr(tds.Nodes[1], s.cfg.Selector("link"), "href")
		if err != nil {
			return nil, err
		}
		if href == "" {
			continue
		}
		memberUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
		if err != nil {
			return nil, err
		}
		pages[seatKey(htmlutil.Text(tds.Eq(3)))] = memberUrl
	}
	s.memberPages = pages
	return pages, nil
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	if entry.URL == "" {
		return scraper.Raw{}, scraper.Skip("no member page for %s, likely retired", entry.ID)
	}
	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	paragraphs, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("contact"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if paragraphs.Length() < 2 {
		return scraper.Raw{}, scraper.Skip("no contact information at %s", entry.URL)
	}

	office := scraper.Office{
		Note:    scraper.DistrictOffice,
		Address: []string{entry.Field("address"), entry.Field("city")},
	}
	var secondary string
	for _, line := range htmlutil.TextLines(paragraphs.Eq(1)) {
		key, value, _ := strings.Cut(line, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "Email":
			office.Email = value
		case "Primary ph":
			office.Phone = value
		case "Secondary ph":
			secondary = value
		}
	}
	if office.Phone == "" {
		office.Phone = secondary
	}
	if office.Email == "" {
		office.Email = entry.Field("email")
	}

	return scraper.Raw{
		Name:     entry.Field("name"),
		District: entry.Field("district"),
		Party:    entry.Field("party"),
		Offices:  []scraper.Office{office},
		Sources:  []string{entry.Field("roster"), entry.URL},
		Links:    []string{entry.URL},
	}, nil
}
