// Package indiana scrapes the Indiana General Assembly. Members come from the
// legislature's JSON API, contact details from each member's page.
package indiana

import (
	"context"
	"fmt"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"
	"legiscrape/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("legiscrape.scrapers.in")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Democratic":  "Democratic",
			"Republican":  "Republican",
			"Independent": "Independent",
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "317"},
		Chambers: map[person.Chamber]string{
			person.Upper: "senate",
			person.Lower: "house",
		},
		URLs: map[string]string{
			// session, chamber
			"legislators": "https://api.iga.in.gov/%s/chambers/%s/legislators",
			"api":         "https://api.iga.in.gov",
			"site":        "https://iga.in.gov/legislative",
		},
		Selectors: map[string]string{
			"address":  `address`,
			"district": `span.district-heading`,
			"email":    `#accordion-groups-container > div > div > a`,
			"email_me": `a.email-me`,
		},
		Session: "2025",
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

type legislator struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Party     string `json:"party"`
	Link      string `json:"link"`
}

type legislatorPage struct {
	Items    []legislator `json:"items"`
	NextLink string       `json:"nextLink"`
}

func (s *Scraper) apiRequest() fetch.Request {
	return fetch.Request{Header: map[string]string{
		"x-api-key": s.cfg.ApiKey,
		"accept":    "application/json",
	}}
}

func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	if s.cfg.ApiKey == "" {
		return nil, fmt.Errorf("an api key is required, set jurisdictions.in.api_key")
	}

	var all []legislator
	next := s.cfg.URLf("legislators", s.cfg.Session, s.cfg.Label(chamber))
	for pages := 0; next != ""; pages++ {
		if pages > 100 {
			return nil, fmt.Errorf("legislator api did not stop paginating")
		}
		var page legislatorPage
		err := s.client.JSON(ctx, next, s.apiRequest(), &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		next = ""
		if page.NextLink != "" {
			next = s.cfg.URL("api") + page.NextLink
		}
	}

	site := s.cfg.URL("site")
	entries := make([]scraper.Entry, 0, len(all))
	for _, leg := range all {
		name := strings.TrimSpace(leg.FirstName + " " + leg.LastName)
		entries = append(entries, scraper.Entry{
			Chamber: chamber,
			ID:      leg.Link,
			URL:     site + strings.Replace(leg.Link, "legislators/", "legislators/legislator_", 1),
			Notice:  name,
			Fields: map[string]string{
				"name":  name,
				"party": leg.Party,
				"api":   s.cfg.URL("api") + leg.Link,
				"photo": site + strings.Replace(leg.Link, "legislators/", "portraits/legislator_", 1),
			},
		})
	}
	return entries, nil
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}

	districtText := strings.ToLower(htmlutil.Text(doc.Find(s.cfg.Selector("district")).First()))
	district := strings.TrimSpace(strings.ReplaceAll(districtText, "district", ""))
	if district == "" {
		return scraper.Raw{}, scraper.Skip("no district on %s", entry.URL)
	}

	office := scraper.Office{Note: scraper.CapitolOffice}
	addresses := doc.Find(s.cfg.Selector("address"))
	if addresses.Length() > 0 {
		office.Address = htmlutil.TextLines(addresses.Eq(0))
	}
	if addresses.Length() > 1 {
		office.Phone = htmlutil.Text(addresses.Eq(1))
	}

	office.Email, err = s.email(ctx, doc, entry.Chamber)
	if err != nil {
		return scraper.Raw{}, err
	}
	if office.Email == "" {
		prefix := "h"
		if entry.Chamber == person.Upper {
			prefix = "s"
		}
		office.Email = fmt.Sprintf("%s%s@iga.in.gov", prefix, normalize.District(district, entry.Chamber))
	}

	return scraper.Raw{
		Name:     entry.Field("name"),
		District: district,
		Party:    entry.Field("party"),
		PhotoURL: entry.Field("photo"),
		Offices:  []scraper.Office{office},
		Sources:  []string{entry.URL, entry.Field("api")},
		Links:    []string{entry.URL},
	}, nil
}

// email returns the raw email link of the member page. Obfuscated links
// are returned as they are. Senators may instead link to a caucus page
// that has the address.
func (s *Scraper) email(ctx context.Context, doc *goquery.Document, chamber person.Chamber) (string, error) {
	href, ok := doc.Find(s.cfg.Selector("email")).Last().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", nil
	}
	if strings.Contains(href, "email-protection") {
		return href, nil
	}
	if chamber != person.Upper {
		return "", nil
	}
	if strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return href, nil
	}

	caucusUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
	if err != nil {
		return "", nil
	}
	caucus, err := s.client.Document(ctx, caucusUrl)
	if err != nil {
		if fetch.IsUnavailable(err) {
			return "", nil
		}
		return "", err
	}
	emailMe, _ := caucus.Find(s.cfg.Selector("email_me")).First().Attr("href")
	return textutil.CollapseWhitespace(emailMe), nil
}
