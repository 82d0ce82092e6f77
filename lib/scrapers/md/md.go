// Package md scrapes the Maryland General Assembly member index and
// member pages.
package md

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

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("legiscrape.scrapers.md")

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Democrat":   "Democratic",
			"Republican": "Republican",
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "410"},
		Chambers: map[person.Chamber]string{
			person.Upper: "senate",
			person.Lower: "house",
		},
		URLs: map[string]string{
			"members": "https://mgaleg.maryland.gov/mgawebsite/Members/Index/%s",
		},
		Selectors: map[string]string{
			"rows":      `//div[contains(@class, "member-index-cell")]/div/div`,
			"img_cell":  `./*[1]`,
			"text_cell": `./*[2]`,
			"link":      `.//a`,
			"photo":     `./a/img`,
			"party":     `//dt[contains(text(), "Party")]/following-sibling::dd[1]`,
			"capitol":   `//dt[contains(text(), "Annapolis Info")]/following-sibling::dd[1]/dl/dd`,
			"mailto":    `//a[contains(@href, "mailto:")]`,
			"sponimg":   `//img[@class="sponimg"]`,
		},
	}
}

// MultipleEmailsError is returned when a member page links more than one
// distinct address and there is no telling which one is the member's.
type MultipleEmailsError struct {
	URL    string
	Emails []string
}

func (e *MultipleEmailsError) Error() string {
	return fmt.Sprintf("%s links multiple email addresses: %s", e.URL, strings.Join(e.Emails, ", "))
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
}

func New(client *fetch.Client, cfg scraper.Config) *Scraper {
	return &Scraper{client: client, cfg: cfg}
}

var districtRegex = regexp.MustCompile(`District (\d{1,2}[ABCD]?)`)

// Listing reads the member index. Leadership shows up twice, the driver
// drops the second copy.
func (s *Scraper) Listing(ctx context.Context, chamber person.Chamber) ([]scraper.Entry, error) {
	ctx, span := tracer.Start(ctx, "Listing")
	defer span.End()

	doc, err := s.client.Document(ctx, s.cfg.URLf("members", s.cfg.Label(chamber)))
	if err != nil {
		return nil, err
	}
	rows, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("rows"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, row := range rows.Nodes {
		textCell, err := htmlutil.XPathNode(row, s.cfg.Selector("text_cell"))
		if err != nil {
			return nil, err
		}
		if textCell == nil {
			continue
		}
		text := strings.Join(htmlutil.NodeLines(textCell), " ")

		entry := scraper.Entry{
			Chamber: chamber,
			Notice:  text,
			Fields:  map[string]string{},
		}
		if m := districtRegex.FindStringSubmatch(text); m != nil {
			entry.Fields["district"] = m[1]
		}

		link, err := htmlutil.XPathNode(textCell, s.cfg.Selector("link"))
		if err != nil {
			return nil, err
		}
		if link != nil {
			entry.Fields["name"] = strings.TrimSpace(htmlutil.GetText(link))
			href, _ := htmlutil.XPathAttr(textCell, s.cfg.Selector("link"), "href")
			if href != "" {
				entry.URL, err = htmlutil.ResolveURL(doc.Url.String(), href)
				if err != nil {
					return nil, err
				}
			}
		}
		entry.ID = entry.Field("name") + " " + entry.Field("district")

		imgCell, err := htmlutil.XPathNode(row, s.cfg.Selector("img_cell"))
		if err != nil {
			return nil, err
		}
		if imgCell != nil {
			photo, err := htmlutil.XPathAttr(imgCell, s.cfg.Selector("photo"), "src")
			if err != nil {
				return nil, err
			}
			if photo != "" {
				entry.Fields["photo"], _ = htmlutil.ResolveURL(doc.Url.String(), photo)
			}
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

var (
	phoneRegex  = regexp.MustCompile(`Phone (\d{3}-\d{3}-\d{4})`)
	faxRegex    = regexp.MustCompile(`Fax (\d{3}-\d{3}-\d{4})`)
	mailtoRegex = regexp.MustCompile(`(?i)^mailto:([^?]+)`)
)

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	if entry.URL == "" {
		return scraper.Raw{}, scraper.Skip("no member page link")
	}
	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	root := doc.Nodes[0]

	party, err := htmlutil.XPathText(root, s.cfg.Selector("party"))
	if err != nil {
		return scraper.Raw{}, err
	}

	office := scraper.Office{Note: scraper.CapitolOffice}
	capitol, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("capitol"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if capitol.Length() >= 2 {
		office.Address = htmlutil.NodeLines(capitol.Nodes[0])
		office.Phone, office.Fax = phoneLines(htmlutil.NodeLines(capitol.Nodes[1]))
	}

	office.Email, err = s.email(doc.Selection, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}

	photo := entry.Field("photo")
	sponimg, err := htmlutil.XPathAttr(root, s.cfg.Selector("sponimg"), "src")
	if err != nil {
		return scraper.Raw{}, err
	}
	if sponimg != "" {
		photo, _ = htmlutil.ResolveURL(doc.Url.String(), sponimg)
	}

	return scraper.Raw{
		Name:      entry.Field("name"),
		NameOrder: normalize.SurnameFirst,
		District:  entry.Field("district"),
		Party:     party,
		PhotoURL:  photo,
		Offices:   []scraper.Office{office},
		Sources:   []string{entry.URL},
		Links:     []string{entry.URL},
	}, nil
}

// phoneLines picks the numbers out of lines like "Phone 410-841-3700".
// A few fax numbers are typed with a doubled dash or a dash and a space.
func phoneLines(lines []string) (phone, fax string) {
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Phone"):
			phone = line
			if m := phoneRegex.FindStringSubmatch(line); m != nil {
				phone = m[1]
			}
		case strings.Contains(line, "Fax"):
			line = strings.ReplaceAll(line, "--", "-")
			line = strings.ReplaceAll(line, "- ", "-")
			fax = line
			if m := faxRegex.FindStringSubmatch(line); m != nil {
				fax = m[1]
			}
		}
	}
	return phone, fax
}

func (s *Scraper) email(page *goquery.Selection, pageUrl string) (string, error) {
	links, err := htmlutil.XPath(page, s.cfg.Selector("mailto"))
	if err != nil {
		return "", err
	}
	var emails []string
	seen := map[string]bool{}
	for i := range links.Nodes {
		href, _ := links.Eq(i).Attr("href")
		m := mailtoRegex.FindStringSubmatch(strings.TrimSpace(href))
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		emails = append(emails, m[1])
	}
	switch len(emails) {
	case 0:
		return "", nil
	case 1:
		return emails[0], nil
	}
	return "", &MultipleEmailsError{URL: pageUrl, Emails: emails}
}
