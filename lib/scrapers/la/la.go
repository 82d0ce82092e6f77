// Package la scrapes the Louisiana Senate and House member pages, which
// are laid out differently per chamber.
package la

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

	"go.opentelemetry.io/otel"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("legiscrape.scrapers.la")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Republican":  "Republican",
			"Democrat":    "Democratic",
			"Independent": "Independent",
		},
		Phone: normalize.PhoneRules{
			DefaultAreaCode: "225",
			Fixes: []normalize.PhoneFix{
				{From: "9225) ", To: "(225) "},
				{From: "504-83POLLY (837-6559)", To: "504-837-6559"},
			},
		},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senate",
			person.Lower: "House",
		},
		URLs: map[string]string{
			"members.upper": "http://senate.la.gov/Senators/",
			"members.lower": "http://house.louisiana.gov/H_Reps/H_Reps_FullInfo.aspx",
		},
		Selectors: map[string]string{
			"senators": `//table[@width='96%']//tr//a[contains(@href, 'senate.la.gov')]`,
			"headings": `//tr/td/font`,
			"info":     `//font[contains(text(), "Information:")]/ancestor::table[1]//text()`,

			"rows":      `//table[@id='body_ListView1_itemPlaceholderContainer']//tr`,
			"cells":     `./th`,
			"rep_link":  `.//a[contains(@href, 'H_Reps')]`,
			"rep_name":  `//span[@id="body_FormView5_FULLNAMELabel"]`,
			"rep_party": `//span[@id="body_FormView5_PARTYAFFILIATIONLabel"]`,
			"rep_email": `//span[@id="body_FormView6_EMAILADDRESSPUBLICLabel"]`,
			"rep_photo": `//img[contains(@src, "/h_reps/RepPics")]`,
		},
	}
}

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
		return s.senators(ctx)
	}
	return s.representatives(ctx)
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	if entry.Chamber == person.Upper {
		return s.senator(doc.Nodes[0], entry)
	}
	return s.representative(doc.Nodes[0], doc.Url.String(), entry)
}

func (s *Scraper) senators(ctx context.Context) ([]scraper.Entry, error) {
	doc, err := s.client.Document(ctx, s.cfg.ChamberURL("members", person.Upper))
	if err != nil {
		return nil, err
	}
	links, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("senators"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, a := range htmlutil.GetAnchors(ctx, doc.Url, links) {
		if a.Name == "" {
			continue
		}
		entries = append(entries, scraper.Entry{
			Chamber: person.Upper,
			ID:      a.Href,
			URL:     a.Href,
			Notice:  a.Name,
		})
	}
	return entries, nil
}

var (
	senatorTitle    = regexp.MustCompile(`^(?:Senator|President Pro Tempore)\s+(.+)$`)
	senatorDistrict = regexp.MustCompile(`^District\s*-\s*(.*?)$`)
)

// senator reads a page whose headings include "Senator Jane Doe" and
// "District - 12" and whose info table is a flat run of label and value
// fragments: "Party:", "Republican", "District Office:", <address lines>,
// "District Phone", "225-555-0100", "Fax", ...
func (s *Scraper) senator(root *html.Node, entry scraper.Entry) (scraper.Raw, error) {
	headings, err := htmlutil.XPathTexts(root, s.cfg.Selector("headings"))
	if err != nil {
		return scraper.Raw{}, err
	}
	var name, district string
	for _, h := range headings {
		if strings.HasSuffix(h, "Information:") {
			continue
		}
		if m := senatorTitle.FindStringSubmatch(h); m != nil && name == "" {
			name = m[1]
		}
		if m := senatorDistrict.FindStringSubmatch(h); m != nil && district == "" {
			district = m[1]
		}
	}
	if name == "" {
		return scraper.Raw{}, fmt.Errorf("%s: no senator heading", entry.URL)
	}
	if person.IsVacantOrRetired(name) {
		return scraper.Raw{}, scraper.Skip("seat is %s", name)
	}

	info, err := htmlutil.XPathTexts(root, s.cfg.Selector("info"))
	if err != nil {
		return scraper.Raw{}, err
	}
	partyAt := indexOf(info, "Party:") + 1
	phoneAt := indexOf(info, "District Phone") + 1
	if partyAt == 0 || partyAt >= len(info) {
		return scraper.Raw{}, fmt.Errorf("%s: no party in the information table", entry.URL)
	}

	office := scraper.Office{
		Note:  scraper.DistrictOffice,
		Phone: valueAfter(info, "District Phone"),
		Fax:   valueAfter(info, "Fax"),
		Email: valueAfter(info, "E-mail Address"),
	}
	// the address starts after the label following the party value and
	// runs up to the phone label
	if phoneAt > 0 && partyAt+2 < phoneAt-1 {
		office.Address = info[partyAt+2 : phoneAt-1]
	}

	return scraper.Raw{
		Name:     name,
		District: district,
		Party:    info[partyAt],
		Offices:  []scraper.Office{office},
		Sources:  []string{entry.URL},
		Links:    []string{entry.URL},
	}, nil
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

func valueAfter(list []string, label string) string {
	i := indexOf(list, label)
	if i < 0 || i+1 >= len(list) {
		return ""
	}
	return list[i+1]
}

// representatives reads the full info table, one row of name, district,
// office address and phone per member.
func (s *Scraper) representatives(ctx context.Context) ([]scraper.Entry, error) {
	doc, err := s.client.Document(ctx, s.cfg.ChamberURL("members", person.Lower))
	if err != nil {
		return nil, err
	}
	rows, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("rows"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	// the first row is the header
	for i, row := range rows.Nodes {
		if i == 0 {
			continue
		}
		cells, err := htmlutil.XPath(rows.Eq(i), s.cfg.Selector("cells"))
		if err != nil {
			return nil, err
		}
		if cells.Length() < 4 {
			continue
		}
		href, err := htmlutil.XPathAttr(row, s.cfg.Selector("rep_link"), "href")
		if err != nil {
			return nil, err
		}
		if href == "" {
			continue
		}
		repUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
		if err != nil {
			return nil, err
		}
		name := htmlutil.Text(cells.Eq(0))
		entries = append(entries, scraper.Entry{
			Chamber: person.Lower,
			ID:      repUrl,
			URL:     repUrl,
			Notice:  name,
			Fields: map[string]string{
				"name":     name,
				"district": strings.TrimSpace(strings.Replace(htmlutil.Text(cells.Eq(1)), "Dist", "", 1)),
				"office":   strings.Join(htmlutil.TextLines(cells.Eq(2)), "\n"),
				"phone":    htmlutil.Text(cells.Eq(3)),
			},
		})
	}
	return entries, nil
}

func (s *Scraper) representative(root *html.Node, pageUrl string, entry scraper.Entry) (scraper.Raw, error) {
	name, err := htmlutil.XPathText(root, s.cfg.Selector("rep_name"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if strings.HasPrefix(name, "District ") || strings.HasPrefix(name, "Vacant ") {
		return scraper.Raw{}, scraper.Skip("seat is vacant: %s", name)
	}
	name = strings.TrimSuffix(name, ", I")

	party, err := htmlutil.XPathText(root, s.cfg.Selector("rep_party"))
	if err != nil {
		return scraper.Raw{}, err
	}
	email, err := htmlutil.XPathText(root, s.cfg.Selector("rep_email"))
	if err != nil {
		return scraper.Raw{}, err
	}
	photo, err := htmlutil.XPathAttr(root, s.cfg.Selector("rep_photo"), "src")
	if err != nil {
		return scraper.Raw{}, err
	}
	if photo != "" {
		photo, _ = htmlutil.ResolveURL(pageUrl, photo)
	}

	return scraper.Raw{
		Name:     name,
		District: entry.Field("district"),
		Party:    party,
		PhotoURL: photo,
		Offices: []scraper.Office{{
			Note:    scraper.DistrictOffice,
			Address: []string{entry.Field("office")},
			Phone:   entry.Field("phone"),
			Email:   email,
		}},
		Sources: []string{entry.URL},
		Links:   []string{entry.URL},
	}, nil
}
