// Package nc scrapes the North Carolina General Assembly member lists.
package nc

import (
	"context"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("legiscrape.scrapers.nc")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Dem": "Democratic",
			"Rep": "Republican",
			"Una": "Unaffiliated",
			"D":   "Democratic",
			"R":   "Republican",
			"U":   "Unaffiliated",
		},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senate",
			person.Lower: "House",
		},
		URLs: map[string]string{
			"members": "https://www.ncleg.gov/gascripts/members/memberListNoPic.pl?sChamber=%s",
		},
		Selectors: map[string]string{
			"rows":    `table.members tr`,
			"notice":  `span`,
			"columns": `div.card-body > div > div`,
			"heading": `h6`,
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "919"},
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

// each row is party code, district, name (with a notice span for members
// who left) and counties
func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	doc, err := s.client.Document(ctx, s.cfg.URLf("members", s.cfg.Label(chamber)))
	if err != nil {
		return nil, err
	}
	base := doc.Url.String()

	var entries []scraper.Entry
	doc.Find(s.cfg.Selector("rows")).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 4 {
			return
		}
		nameCell := cells.Eq(2)
		link := nameCell.Find("a").First()
		href, _ := link.Attr("href")
		memberUrl, err := htmlutil.ResolveURL(base, href)
		if err != nil {
			memberUrl = ""
		}

		party := strings.Trim(htmlutil.Text(cells.Eq(0)), "()")
		district := htmlutil.Text(cells.Eq(1))
		entries = append(entries, scraper.Entry{
			Chamber: chamber,
			ID:      district,
			URL:     memberUrl,
			Notice:  htmlutil.Text(nameCell.Find(s.cfg.Selector("notice"))),
			Fields: map[string]string{
				"party":    party,
				"district": district,
				"name":     htmlutil.Text(link),
			},
		})
	})
	return entries, nil
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	if entry.URL == "" {
		return scraper.Raw{}, scraper.Skip("no member page for %s", entry.Field("name"))
	}
	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}

	raw := scraper.Raw{
		Name:     entry.Field("name"),
		District: entry.Field("district"),
		Party:    entry.Field("party"),
		Sources:  []string{entry.URL},
		Links:    []string{entry.URL},
	}

	mailing := addressLines(s.section(doc, "Mailing Address:"))
	capitol := scraper.Office{Note: scraper.CapitolOffice, Address: mailing}
	if legislative := s.section(doc, "Legislative Office:"); legislative != nil {
		if lines := addressLines(legislative); len(lines) > 0 {
			capitol.Address = lines
		}
		capitol.Phone = telText(legislative)
	}
	if email := s.section(doc, "Email:"); email != nil {
		capitol.Email, _ = email.Find(`a[href^="mailto:"]`).First().Attr("href")
	}

	var offices []scraper.Office
	if len(mailing) > 0 {
		offices = append(offices, scraper.Office{Note: scraper.DistrictOffice, Address: mailing})
	}
	offices = append(offices, capitol)

	// the main number is not labeled with an office
	if phone := s.section(doc, "Phone:"); phone != nil {
		offices = scraper.AssignUnlabeledPhone(offices, telText(phone))
	}
	raw.Offices = offices
	return raw, nil
}

// section is what follows the h6 heading with the given text: its
// sibling paragraphs, or the next column when the heading sits in a
// column of its own.
func (s *Scraper) section(doc *goquery.Document, heading string) *goquery.Selection {
	h := doc.Find(s.cfg.Selector("heading")).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.Contains(sel.Text(), heading)
	}).First()
	if h.Length() == 0 {
		return nil
	}
	if ps := h.NextUntil(s.cfg.Selector("heading")).Filter("p"); ps.Length() > 0 {
		return ps
	}
	return h.ParentsFiltered("div").First().NextAllFiltered("div").First()
}

func addressLines(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	var lines []string
	sel.Each(func(_ int, p *goquery.Selection) {
		if p.Find(`a[href^="tel:"]`).Length() > 0 {
			return
		}
		text := htmlutil.Text(p)
		if text != "" && text != "None" {
			lines = append(lines, text)
		}
	})
	return lines
}

func telText(sel *goquery.Selection) string {
	return htmlutil.Text(sel.Find(`a[href^="tel:"]`).First())
}
