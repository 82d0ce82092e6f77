// Package ny scrapes the New York Senate and Assembly. Assembly party
// affiliations are only published in the state board of elections'
// two-column roster PDF.
package ny

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/pdfcolumns"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("legiscrape.scrapers.ny")

const assemblySeats = 150

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"D":           "Democratic",
			"R":           "Republican",
			"Democratic":  "Democratic",
			"Republican":  "Republican",
			"Independent": "Independent",
		},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senate",
			person.Lower: "Assembly",
		},
		URLs: map[string]string{
			"members.upper": "https://www.nysenate.gov/senators-committees",
			"members.lower": "https://assembly.state.ny.us/mem/?sh=email",
			"roster":        "https://www.elections.ny.gov/NYSBOE/Elections/2019/ElectedOfficials.pdf",
			// district
			"assembly_photo": "https://assembly.state.ny.us/mem/pic/%03d.jpg",
		},
		Selectors: map[string]string{
			"senators":         `//div[contains(@class, "u-even") or contains(@class, "u-odd")]/a`,
			"senator_info":     `.//div[@class="nys-senator--info"]`,
			"senator_name":     `./h4[@class="nys-senator--name"]`,
			"senator_district": `.//span[@class="nys-senator--district"]`,
			"senator_party":    `.//span[@class="nys-senator--party"]`,
			"senator_photo":    `.//div[@class="nys-senator--thumb"]/img`,
			"senator_email":    `//div[contains(concat(" ", normalize-space(@class), " "), " c-block--senator-email ")]/div/a[contains(@href, "mailto:")]`,
			"offices":          `//div[@class="adr"]`,

			"assembly":     `//div[@id="maincontainer"]/div[contains(@class, "email")]`,
			"member_link":  `.//a[contains(@href, "/mem/")]`,
			"member_email": `.//a[contains(@href, "mailto")]`,
			"addresses":    `//div[@class="addrcola"]`,

			"roster_banner": `ELECTED REPRESENTATIVES FOR NEW YORK STATE`,
			"roster_header": `^Member of Assembly (\d+)`,
			"roster_column": "40",
		},
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
	// converts the roster PDF, pdftotext unless replaced
	Converter pdfcolumns.Converter

	parties map[string]string
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg, Converter: pdfcolumns.Pdftotext{}}
}

func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	if chamber == person.Upper {
		return s.senators(ctx)
	}
	return s.assembly(ctx)
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	if entry.Chamber == person.Upper {
		return s.senator(ctx, entry)
	}
	return s.assemblyMember(ctx, entry)
}

var digits = regexp.MustCompile(`\d+`)

func (s *Scraper) senators(ctx context.Context) ([]scraper.Entry, error) {
	listUrl := s.cfg.ChamberURL("members", person.Upper)
	doc, err := s.client.Document(ctx, listUrl)
	if err != nil {
		return nil, err
	}
	links, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("senators"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, a := range links.Nodes {
		href := strings.TrimSuffix(attr(a, "href"), "/")
		memberUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
		if err != nil {
			continue
		}
		info, err := htmlutil.XPathNode(a, s.cfg.Selector("senator_info"))
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		name, err := htmlutil.XPathText(info, s.cfg.Selector("senator_name"))
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		fields := map[string]string{"name": name, "list": listUrl}
		district, err := htmlutil.XPathNode(info, s.cfg.Selector("senator_district"))
		if err != nil {
			return nil, err
		}
		if district != nil {
			// the district's own text, the party is a nested span
			own, err := htmlutil.XPathTexts(district, "./text()")
			if err != nil {
				return nil, err
			}
			fields["district"] = digits.FindString(strings.Join(own, " "))
			fields["party"], err = htmlutil.XPathText(district, s.cfg.Selector("senator_party"))
			if err != nil {
				return nil, err
			}
		}
		photo, err := htmlutil.XPathAttr(a, s.cfg.Selector("senator_photo"), "src")
		if err != nil {
			return nil, err
		}
		if photo != "" {
			fields["photo"], _ = htmlutil.ResolveURL(doc.Url.String(), photo)
		}

		entries = append(entries, scraper.Entry{
			Chamber: person.Upper,
			ID:      memberUrl,
			URL:     memberUrl + "/contact",
			Notice:  name,
			Fields:  fields,
		})
	}
	return entries, nil
}

// senatorParty reduces "(D, WF)" to "D".
func senatorParty(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "()")
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

func (s *Scraper) senator(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}

	email, err := htmlutil.XPathAttr(doc.Nodes[0], s.cfg.Selector("senator_email"), "href")
	if err != nil {
		return scraper.Raw{}, err
	}

	offices, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("offices"))
	if err != nil {
		return scraper.Raw{}, err
	}
	var parsed []scraper.Office
	for _, node := range offices.Nodes {
		office, err := senateOffice(node)
		if err != nil {
			return scraper.Raw{}, err
		}
		if office != nil {
			parsed = append(parsed, *office)
		}
	}
	if email != "" {
		parsed = withCapitolEmail(parsed, email)
	}

	return scraper.Raw{
		Name:     entry.Field("name"),
		District: entry.Field("district"),
		Party:    senatorParty(entry.Field("party")),
		PhotoURL: entry.Field("photo"),
		Offices:  parsed,
		Sources:  []string{entry.URL},
		Links:    []string{entry.ID, entry.URL},
	}, nil
}

func withCapitolEmail(offices []scraper.Office, email string) []scraper.Office {
	for i := range offices {
		if offices[i].Note == scraper.CapitolOffice {
			offices[i].Email = email
			return offices
		}
	}
	return append(offices, scraper.Office{Note: scraper.CapitolOffice, Email: email})
}

// senateOffice reads one hCard style office block, nil for offices that
// are neither the Albany office nor a district office.
func senateOffice(node *html.Node) (*scraper.Office, error) {
	text := func(expr string) (string, error) {
		return htmlutil.XPathText(node, expr)
	}

	name, err := text(`.//span[@itemprop="name"]`)
	if err != nil {
		return nil, err
	}
	office := &scraper.Office{}
	switch {
	case strings.Contains(name, "Albany Office"):
		office.Note = scraper.CapitolOffice
	case strings.Contains(name, "District Office"):
		office.Note = scraper.DistrictOffice
	default:
		return nil, nil
	}

	street, err := text(`.//div[@class="street-address"][1]/span[@itemprop="streetAddress"][1]`)
	if err != nil {
		return nil, err
	}
	city, err := text(`.//span[@class="locality"][1]`)
	if err != nil {
		return nil, err
	}
	state, err := text(`.//span[@class="region"][1]`)
	if err != nil {
		return nil, err
	}
	zip, err := text(`.//span[@class="postal-code"][1]`)
	if err != nil {
		return nil, err
	}
	if street != "" && city != "" && state != "" && zip != "" {
		office.Address = []string{street, fmt.Sprintf("%s, %s %s", strings.TrimSuffix(city, ","), state, zip)}
	}

	office.Phone, err = text(`.//div[@class="tel"]/span[@itemprop="telephone"]`)
	if err != nil {
		return nil, err
	}
	office.Fax, err = text(`.//div[@class="tel"]/span[@itemprop="faxNumber"]`)
	if err != nil {
		return nil, err
	}
	return office, nil
}

func (s *Scraper) assembly(ctx context.Context) ([]scraper.Entry, error) {
	parties, err := s.assemblyParties(ctx)
	if err != nil {
		return nil, fmt.Errorf("assembly roster: %w", err)
	}

	listUrl := s.cfg.ChamberURL("members", person.Lower)
	doc, err := s.client.Document(ctx, listUrl)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("assembly"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, group := range splitOnClass(nodes, "emailclear") {
		if len(group) < 2 {
			continue
		}
		anchor, err := htmlutil.XPathNode(group[0], s.cfg.Selector("member_link"))
		if err != nil {
			return nil, err
		}
		if anchor == nil {
			continue
		}
		name := strings.TrimSpace(htmlutil.GetText(anchor))
		if name == "Assembly Members" {
			continue
		}
		memberUrl, err := htmlutil.ResolveURL(doc.Url.String(), attr(anchor, "href"))
		if err != nil {
			return nil, err
		}

		district := strings.TrimLeft(strings.TrimRight(strings.TrimSpace(htmlutil.GetText(group[1])), "rthnds"), "0")
		fields := map[string]string{
			"name":     name,
			"district": district,
			"party":    parties[district],
			"list":     listUrl,
		}
		if n, err := strconv.Atoi(district); err == nil {
			fields["photo"] = s.cfg.URLf("assembly_photo", n)
		}
		if len(group) > 2 {
			fields["email"], err = htmlutil.XPathText(group[2], s.cfg.Selector("member_email"))
			if err != nil {
				return nil, err
			}
		}

		entries = append(entries, scraper.Entry{
			Chamber: person.Lower,
			ID:      district,
			URL:     memberUrl,
			Notice:  name,
			Fields:  fields,
		})
	}
	return entries, nil
}

// splitOnClass groups consecutive nodes, a node with class separator ends
// a group.
func splitOnClass(sel *goquery.Selection, separator string) [][]*html.Node {
	var groups [][]*html.Node
	var current []*html.Node
	for _, n := range sel.Nodes {
		if attr(n, "class") == separator {
			groups = append(groups, current)
			current = nil
			continue
		}
		current = append(current, n)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

var (
	phoneLike   = regexp.MustCompile(`\d{3}[-\s]?\d{3}[-\s]?\d{4}`)
	localAlbany = regexp.MustCompile(`^\d{3}[- ]\d{4}$`)
)

const (
	officeHeader = `./div[@class="officehdg"]`
	officeLines  = `./div[@class="officeaddr"]//text()`
)

func (s *Scraper) assemblyMember(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	if strings.Contains(entry.Field("name"), "Assembly District") {
		return scraper.Raw{}, scraper.Skip("no member for %s", entry.Field("name"))
	}

	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	blocks, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("addresses"))
	if err != nil {
		return scraper.Raw{}, err
	}

	var offices []scraper.Office
	for _, block := range blocks.Nodes {
		heading, err := htmlutil.XPathText(block, officeHeader)
		if err != nil {
			return scraper.Raw{}, err
		}
		lines, err := htmlutil.XPathTexts(block, officeLines)
		if err != nil {
			return scraper.Raw{}, err
		}
		office := scraper.Office{Note: scraper.CapitolOffice}
		if strings.Contains(strings.ToLower(heading), "district") {
			office.Note = scraper.DistrictOffice
		}

		// the last line is the map link
		if len(lines) > 0 {
			lines = lines[:len(lines)-1]
		}
		if len(lines) > 0 {
			if fax, ok := strings.CutPrefix(lines[len(lines)-1], "Fax: "); ok {
				lines = lines[:len(lines)-1]
				// Albany office numbers are printed without the area code
				if office.Note == scraper.CapitolOffice && localAlbany.MatchString(fax) {
					fax = "518-" + strings.ReplaceAll(strings.TrimSpace(fax), " ", "-")
				}
				office.Fax = fax
			}
		}
		if len(lines) > 0 && phoneLike.MatchString(lines[len(lines)-1]) {
			office.Phone = lines[len(lines)-1]
			lines = lines[:len(lines)-1]
		}
		office.Address = lines
		offices = append(offices, office)
	}
	if email := entry.Field("email"); email != "" {
		offices = withCapitolEmail(offices, email)
	}

	return scraper.Raw{
		Name:      entry.Field("name"),
		NameOrder: normalize.SurnameFirst,
		District:  entry.Field("district"),
		Party:     entry.Field("party"),
		PhotoURL:  entry.Field("photo"),
		Offices:   offices,
		Sources:   []string{entry.Field("list"), entry.URL},
		Links:     []string{entry.Field("list")},
	}, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
