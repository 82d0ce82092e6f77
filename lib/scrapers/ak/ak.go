// Package ak scrapes the Alaska Legislature member pages.
package ak

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"
	"legiscrape/lib/textutil"

	"go.opentelemetry.io/otel"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("legiscrape.scrapers.ak")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Democrat":       "Democratic",
			"Republican":     "Republican",
			"Non Affiliated": "Independent",
			"Not Affiliated": "Independent",
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "907"},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senator",
			person.Lower: "Representative",
		},
		URLs: map[string]string{
			"members": "https://www.akleg.gov/basis/mbr_info.asp?session=%s",
		},
		Selectors: map[string]string{
			"rows":    `//table[@id="members"]//tr[td]`,
			"link":    `.//td//a`,
			"content": `//div[@class="tab-content"]`,
			"photo":   `.//div[@class="bioleft"]/img`,
			"name":    `.//div[@class="bioright"]/span`,
			"email":   `.//div[@class="bioright"]//a[starts-with(@href, "mailto:")]`,
			"bio":     `.//div[@class="bioright"]`,
			"session": `//strong[normalize-space()="Session Contact"]/..`,
			"interim": `//strong[normalize-space()="Interim Contact"]/..`,
		},
		Session: "33",
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

// the member table lists both chambers, the link text starts with the
// member type ("Senator Jane Doe")
func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	listUrl := s.cfg.URLf("members", s.cfg.Session)
	doc, err := s.client.Document(ctx, listUrl)
	if err != nil {
		return nil, err
	}
	rows, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("rows"))
	if err != nil {
		return nil, err
	}

	memberType := s.cfg.Label(chamber)
	var entries []scraper.Entry
	for _, row := range rows.Nodes {
		link, err := htmlutil.XPathNode(row, s.cfg.Selector("link"))
		if err != nil {
			return nil, err
		}
		if link == nil {
			continue
		}
		text := htmlutil.NodeLines(link)
		if len(text) == 0 || !strings.HasPrefix(text[0], memberType) {
			continue
		}
		href, err := htmlutil.XPathAttr(row, s.cfg.Selector("link"), "href")
		if err != nil {
			return nil, err
		}
		memberUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
		if err != nil {
			return nil, fmt.Errorf("member link of %s: %w", text[0], err)
		}
		entries = append(entries, scraper.Entry{
			Chamber: chamber,
			ID:      text[0],
			URL:     memberUrl,
			Notice:  strings.Join(htmlutil.NodeLines(row), " "),
		})
	}
	return entries, nil
}

var bioRegex = regexp.MustCompile(`(?s)District:\s*(\S+).*Party:\s*([a-zA-Z ]+)`)

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	root := doc.Nodes[0]
	content, err := htmlutil.XPathNode(root, s.cfg.Selector("content"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if content == nil {
		return scraper.Raw{}, fmt.Errorf("%s: no bio content", entry.URL)
	}

	name, err := htmlutil.XPathText(content, s.cfg.Selector("name"))
	if err != nil {
		return scraper.Raw{}, err
	}
	bio, err := htmlutil.XPathNode(content, s.cfg.Selector("bio"))
	if err != nil {
		return scraper.Raw{}, err
	}
	var district, party string
	if bio != nil {
		groups := bioRegex.FindStringSubmatch(strings.Join(htmlutil.NodeLines(bio), "\n"))
		if len(groups) == 3 {
			district, party = groups[1], strings.TrimSpace(groups[2])
		}
	}

	raw := scraper.Raw{
		Name:     name,
		District: district,
		Party:    party,
		Sources:  []string{entry.URL},
		Links:    []string{entry.URL},
	}

	photo, err := htmlutil.XPathAttr(content, s.cfg.Selector("photo"), "src")
	if err != nil {
		return scraper.Raw{}, err
	}
	if photo != "" {
		raw.PhotoURL, _ = htmlutil.ResolveURL(doc.Url.String(), photo)
	}

	email, err := htmlutil.XPathAttr(content, s.cfg.Selector("email"), "href")
	if err != nil {
		return scraper.Raw{}, err
	}

	capitol, err := contactBlock(root, s.cfg.Selector("session"), "Session Contact", scraper.CapitolOffice)
	if err != nil {
		return scraper.Raw{}, err
	}
	if capitol != nil {
		capitol.Email = email
		raw.Offices = append(raw.Offices, *capitol)
	} else if email != "" {
		raw.Offices = append(raw.Offices, scraper.Office{Note: scraper.CapitolOffice, Email: email})
	}

	interim, err := contactBlock(root, s.cfg.Selector("interim"), "Interim Contact", scraper.DistrictOffice)
	if err != nil {
		return scraper.Raw{}, err
	}
	if interim != nil {
		raw.Offices = append(raw.Offices, *interim)
	}

	return raw, nil
}

// contactBlock reads a block of the form
//
//	Session Contact
//	State Capitol Room 102
//	Juneau AK, 99801
//	Phone: 465-3725
//	Fax: 465-2222
func contactBlock(root *html.Node, expr, heading, note string) (*scraper.Office, error) {
	block, err := htmlutil.XPathNode(root, expr)
	if err != nil || block == nil {
		return nil, err
	}
	lines := htmlutil.NodeLines(block)
	if len(lines) == 0 || lines[0] != heading {
		return nil, fmt.Errorf("unexpected %s block: %q", heading, lines)
	}

	office := &scraper.Office{Note: note}
	for _, line := range lines[1:] {
		if phone, ok := textutil.After(line, "Phone:"); ok {
			office.Phone = phone
			continue
		}
		if fax, ok := textutil.After(line, "Fax:"); ok {
			office.Fax = fax
			continue
		}
		if strings.HasPrefix(line, "Toll") {
			continue
		}
		if office.Phone == "" && len(office.Address) < 2 {
			office.Address = append(office.Address, line)
		}
	}
	return office, nil
}
