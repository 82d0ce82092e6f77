// Package mn scrapes the Minnesota Legislature. The House list page has
// everything inline. The Senate publishes a CSV roster which is joined
// with its HTML member list for phones, emails and photos.
package mn

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/linker"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("legiscrape.scrapers.mn")

// names below this similarity are never joined
const linkThreshold = 0.85

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"DFL": "Democratic-Farmer-Labor",
			"R":   "Republican",
		},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senate",
			person.Lower: "House",
		},
		URLs: map[string]string{
			"house":       "https://www.house.leg.state.mn.us/members/list",
			"senate_csv":  "https://www.senate.mn/members/member_list_ascii.php?ls=",
			"senate_html": "https://www.senate.mn/members/index.php",
		},
		Selectors: map[string]string{
			"house_item":  `#Alpha div.media.my-3`,
			"senate_item": `#alphabetically div.media.my-3`,
			"heading":     `h5 b`,
			"link":        `h5 a`,
			"photo":       `img`,
			"body":        `div`,
		},
	}
}

// capitol building addresses, anything else in the roster is a district
// office
var capitolStreets = []string{"95 University Avenue W", "100 Rev. Dr. Martin Luther King"}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	if chamber == person.Upper {
		return s.senate(ctx)
	}
	return s.house(ctx)
}

// Detail needs no request, the listing already gathered every field.
func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	office := scraper.Office{
		Note:  entry.Field("office"),
		Phone: entry.Field("phone"),
		Email: entry.Field("email"),
	}
	if address := entry.Field("address"); address != "" {
		office.Address = strings.Split(address, "\n")
	}
	raw := scraper.Raw{
		Name:     entry.Field("name"),
		District: entry.Field("district"),
		Party:    entry.Field("party"),
		PhotoURL: entry.Field("photo"),
		Offices:  []scraper.Office{office},
		Sources:  strings.Split(entry.Field("sources"), " "),
		Links:    []string{entry.URL},
	}
	return raw, nil
}

var (
	houseHeading  = regexp.MustCompile(`^(.+)\((\d{1,2}[ABab]),\s*([A-Z]+)\)$`)
	senateHeading = regexp.MustCompile(`^(.+)\((\d{1,2}),\s*([A-Z]+)\)$`)
	phoneText     = regexp.MustCompile(`^\(?\d{3}\)?[-. ]\d{3}-\d{4}$`)
)

type listItem struct {
	name     string
	district string
	party    string
	url      string
	photo    string
	email    string
	phone    string
	lines    []string
}

func (s *Scraper) listItems(ctx context.Context, pageUrl, itemSelector string, heading *regexp.Regexp) ([]listItem, error) {
	doc, err := s.client.Document(ctx, pageUrl)
	if err != nil {
		return nil, err
	}
	base := doc.Url.String()

	var items []listItem
	var parseErr error
	doc.Find(itemSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		headingText := htmlutil.Text(sel.Find(s.cfg.Selector("heading")).Last())
		groups := heading.FindStringSubmatch(headingText)
		if groups == nil {
			parseErr = fmt.Errorf("unexpected member heading %q", headingText)
			return false
		}

		item := listItem{
			name:     strings.TrimSpace(groups[1]),
			district: groups[2],
			party:    groups[3],
		}
		if href, ok := sel.Find(s.cfg.Selector("link")).Last().Attr("href"); ok {
			item.url, _ = htmlutil.ResolveURL(base, href)
		}
		if src, ok := sel.Find(s.cfg.Selector("photo")).First().Attr("src"); ok {
			item.photo, _ = htmlutil.ResolveURL(base, src)
		}
		for _, a := range htmlutil.GetAnchors(ctx, nil, sel.Find("a")) {
			if strings.HasPrefix(strings.ToLower(a.Href), "mailto:") {
				item.email = a.Href
				break
			}
		}
		for _, line := range htmlutil.TextLines(sel.ChildrenFiltered(s.cfg.Selector("body"))) {
			switch {
			case line == headingText, strings.Contains(line, "@"):
			case phoneText.MatchString(line):
				if item.phone == "" {
					item.phone = line
				}
			default:
				item.lines = append(item.lines, line)
			}
		}
		items = append(items, item)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return items, nil
}

func (s *Scraper) house(ctx context.Context) ([]scraper.Entry, error) {
	listUrl := s.cfg.URL("house")
	items, err := s.listItems(ctx, listUrl, s.cfg.Selector("house_item"), houseHeading)
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, item := range items {
		address := item.lines
		if len(address) > 2 {
			address = address[:2]
		}
		entries = append(entries, scraper.Entry{
			Chamber: person.Lower,
			ID:      item.district,
			URL:     item.url,
			Notice:  item.name,
			Fields: map[string]string{
				"name":     item.name,
				"district": item.district,
				"party":    item.party,
				"photo":    item.photo,
				"email":    item.email,
				"phone":    item.phone,
				"address":  strings.Join(address, "\n"),
				"office":   scraper.CapitolOffice,
				"sources":  listUrl,
			},
		})
	}
	return entries, nil
}

type rosterRow map[string]string

// first non-empty of the columns, the roster has renamed its address
// columns before
func (r rosterRow) get(columns ...string) string {
	for _, c := range columns {
		if v := strings.TrimSpace(r[c]); v != "" {
			return v
		}
	}
	return ""
}

func parseRoster(data []byte) ([]rosterRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []rosterRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		row := rosterRow{}
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func joinKey(lastName, district string) string {
	parts := strings.Fields(lastName)
	if len(parts) == 0 {
		return "|" + district
	}
	return strings.ToLower(parts[len(parts)-1]) + "|" + district
}

func (s *Scraper) senate(ctx context.Context) ([]scraper.Entry, error) {
	csvUrl := s.cfg.URL("senate_csv")
	htmlUrl := s.cfg.URL("senate_html")

	data, err := s.client.Bytes(ctx, csvUrl, fetch.Request{})
	if err != nil {
		return nil, err
	}
	roster, err := parseRoster(data)
	if err != nil {
		return nil, err
	}
	items, err := s.listItems(ctx, htmlUrl, s.cfg.Selector("senate_item"), senateHeading)
	if err != nil {
		return nil, err
	}

	byKey := map[string]int{}
	for i, item := range items {
		byKey[joinKey(item.name, normalize.District(item.district, person.Upper))] = i
	}

	joined := make([]int, len(roster))
	claimed := map[int]bool{}
	var unmatchedNames []string
	unmatchedRows := map[string]int{}
	for i, row := range roster {
		joined[i] = -1
		if row.get("First Name") == "" {
			continue
		}
		district := normalize.District(row.get("District"), person.Upper)
		if idx, ok := byKey[joinKey(row.get("Last Name"), district)]; ok && !claimed[idx] {
			joined[i] = idx
			claimed[idx] = true
			continue
		}
		name := row.get("First Name") + " " + row.get("Last Name")
		unmatchedNames = append(unmatchedNames, name)
		unmatchedRows[name] = i
	}

	if len(unmatchedNames) > 0 {
		var candidates []string
		candidateIdx := map[string]int{}
		for i, item := range items {
			if !claimed[i] {
				candidates = append(candidates, item.name)
				candidateIdx[item.name] = i
			}
		}
		for _, link := range linker.CreateImplicitLinks(unmatchedNames, candidates, linkThreshold) {
			rowIdx := unmatchedRows[link.Left]
			itemIdx := candidateIdx[link.Right]
			rowDistrict := normalize.District(roster[rowIdx].get("District"), person.Upper)
			if rowDistrict != normalize.District(items[itemIdx].district, person.Upper) {
				continue
			}
			slog.DebugContext(ctx, "joined senate roster by name similarity",
				"roster", link.Left, "page", link.Right, "correlation", link.Correlation)
			joined[rowIdx] = itemIdx
		}
	}

	var entries []scraper.Entry
	for i, row := range roster {
		if row.get("First Name") == "" {
			continue
		}
		name := row.get("First Name") + " " + row.get("Last Name")
		district := row.get("District")

		fields := map[string]string{
			"name":     name,
			"district": district,
			"party":    row.get("Party"),
			"sources":  csvUrl + " " + htmlUrl,
		}

		address1 := row.get("Address", "Office Building")
		address2 := row.get("Address2", "Office Address")
		cityLine := fmt.Sprintf("%s, %s %s", row.get("City"), row.get("State"), row.get("Zipcode"))
		fields["office"] = scraper.DistrictOffice
		for _, street := range capitolStreets {
			if address2 != "" && strings.Contains(address2, street) {
				fields["office"] = scraper.CapitolOffice
				if room := row.get("Rm. Number"); room != "" {
					address1 = room + " " + address1
				}
				break
			}
		}
		fields["address"] = strings.Join(nonEmpty(address1, address2, cityLine), "\n")

		entry := scraper.Entry{
			Chamber: person.Upper,
			ID:      district,
			Notice:  name,
			Fields:  fields,
		}
		if joined[i] >= 0 {
			item := items[joined[i]]
			entry.URL = item.url
			fields["photo"] = item.photo
			fields["phone"] = item.phone
			fields["email"] = item.email
		} else {
			slog.WarnContext(ctx, "senator missing from member page", "name", name, "district", district)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), ","))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
