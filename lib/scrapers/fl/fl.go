// Package fl scrapes the Florida Senate and House. House member pages no
// longer carry email addresses, they are recovered from the House
// directory PDF.
package fl

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"legiscrape/lib/fetch"
	"legiscrape/lib/htmlutil"
	"legiscrape/lib/linker"
	"legiscrape/lib/normalize"
	"legiscrape/lib/pdfcolumns"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"go.opentelemetry.io/otel"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("legiscrape.scrapers.fl")

const (
	houseDomain = "@myfloridahouse.gov"
	// guessed addresses below this similarity to a directory address are
	// not used
	emailThreshold = 0.92
)

func Defaults() scraper.Config {
	return scraper.Config{
		Parties: normalize.PartyTable{
			"Democrat":   "Democratic",
			"Republican": "Republican",
		},
		Phone: normalize.PhoneRules{DefaultAreaCode: "850"},
		Chambers: map[person.Chamber]string{
			person.Upper: "Senate",
			person.Lower: "House",
		},
		URLs: map[string]string{
			"members.upper": "https://www.flsenate.gov/Senators/",
			"members.lower": "https://www.myfloridahouse.gov/Sections/Representatives/representatives.aspx",
			"directory":     "https://www.myfloridahouse.gov/FileStores/Web/HouseContent/Approved/ClerksOffice/HouseDirectory.pdf",
			// member id
			"rep_photo": "https://www.flhouse.gov/FileStores/Web/Imaging/Member/%s.jpg",
		},
		Selectors: map[string]string{
			"senators":         `//a[@class='senatorLink']`,
			"senator_district": `../../td[1]`,
			"senator_party":    `../../td[2]`,
			"senator_offices":  `//h4[contains(text(), "Office")]`,
			"office_body":      `./following-sibling::div[1]`,
			"senator_email":    `//a[contains(@href, "mailto:")]`,
			"senator_photo":    `//div[@id="sidebar"]//img`,

			"reps":        `//div[@id="mb-2"]//div[@class="team-box"]`,
			"rep_link":    `./a`,
			"rep_info":    `./a/div[@class="team-txt"]`,
			"rep_name":    `./h5`,
			"rep_office":  `//strong[text()="%s"]/following-sibling::text()`,
			"email_match": `[A-Za-z0-9._'-]+@myfloridahouse\.gov`,
		},
	}
}

type Scraper struct {
	client *fetch.Client
	cfg    scraper.Config
	// converts the House directory, pdftotext unless replaced
	Converter pdfcolumns.Converter

	// lower cased address -> address as printed
	directory map[string]string
	claims    normalize.EmailClaims
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
	return s.representatives(ctx)
}

func (s *Scraper) Detail(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	ctx, span := tracer.Start(ctx, "Detail")
	defer span.End()

	if entry.Chamber == person.Upper {
		return s.senator(ctx, entry)
	}
	return s.representative(ctx, entry)
}

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
	for i, node := range links.Nodes {
		anchors := htmlutil.GetAnchors(ctx, doc.Url, links.Eq(i))
		if len(anchors) == 0 {
			continue
		}
		a := anchors[0]
		// "Doe , Jane" with the comma in its own text node
		name := strings.ReplaceAll(a.Name, " ,", ",")
		district, err := htmlutil.XPathText(node, s.cfg.Selector("senator_district"))
		if err != nil {
			return nil, err
		}
		party, err := htmlutil.XPathText(node, s.cfg.Selector("senator_party"))
		if err != nil {
			return nil, err
		}
		entries = append(entries, scraper.Entry{
			Chamber: person.Upper,
			ID:      a.Href,
			URL:     a.Href,
			Notice:  name,
			Fields: map[string]string{
				"name":     name,
				"district": district,
				"party":    party,
				"list":     listUrl,
			},
		})
	}
	return entries, nil
}

var (
	floridaPhone = regexp.MustCompile(`\(\d{3}\)\s\d{3}-\d{4}`)
	openHours    = regexp.MustCompile(`(?i)open\s+\w+day`)
)

func (s *Scraper) senator(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}
	root := doc.Nodes[0]

	headings, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("senator_offices"))
	if err != nil {
		return scraper.Raw{}, err
	}
	var offices []scraper.Office
	for _, heading := range headings.Nodes {
		office, err := s.senateOffice(heading)
		if err != nil {
			return scraper.Raw{}, err
		}
		offices = append(offices, office)
	}

	email, err := htmlutil.XPathAttr(root, s.cfg.Selector("senator_email"), "href")
	if err != nil {
		return scraper.Raw{}, err
	}
	if email != "" {
		offices = withCapitolEmail(offices, email)
	}

	raw := scraper.Raw{
		Name:      entry.Field("name"),
		NameOrder: normalize.SurnameFirst,
		District:  entry.Field("district"),
		Party:     entry.Field("party"),
		Offices:   offices,
		Sources:   []string{entry.Field("list"), entry.URL},
		Links:     []string{entry.URL},
	}

	photos, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("senator_photo"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if src, ok := photos.Last().Attr("src"); ok {
		raw.PhotoURL, _ = htmlutil.ResolveURL(doc.Url.String(), src)
	}
	return raw, nil
}

// senateOffice reads the block after an office heading: address lines,
// then a phone number and a "FAX" line. Office hours lines are dropped.
func (s *Scraper) senateOffice(heading *html.Node) (scraper.Office, error) {
	office := scraper.Office{Note: scraper.DistrictOffice}
	if strings.TrimSpace(htmlutil.GetText(heading)) == "Tallahassee Office" {
		office.Note = scraper.CapitolOffice
	}

	body, err := htmlutil.XPathNode(heading, s.cfg.Selector("office_body"))
	if err != nil || body == nil {
		return office, err
	}
	afterPhone := false
	for _, line := range htmlutil.NodeLines(body) {
		switch {
		case openHours.MatchString(line):
			continue
		case strings.Contains(line, "FAX"):
			office.Fax = strings.TrimSpace(strings.Replace(line, "FAX", "", 1))
			afterPhone = true
		case floridaPhone.MatchString(line):
			office.Phone = line
			afterPhone = true
		case !afterPhone:
			office.Address = append(office.Address, line)
		}
	}
	return office, nil
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

var repDistrict = regexp.MustCompile(`District: (\d+)`)

func (s *Scraper) representatives(ctx context.Context) ([]scraper.Entry, error) {
	err := s.loadDirectory(ctx)
	if err != nil {
		return nil, err
	}

	listUrl := s.cfg.ChamberURL("members", person.Lower)
	doc, err := s.client.Document(ctx, listUrl)
	if err != nil {
		return nil, err
	}
	boxes, err := htmlutil.XPath(doc.Selection, s.cfg.Selector("reps"))
	if err != nil {
		return nil, err
	}

	var entries []scraper.Entry
	for _, box := range boxes.Nodes {
		info, err := htmlutil.XPathNode(box, s.cfg.Selector("rep_info"))
		if err != nil {
			return nil, err
		}
		href, err := htmlutil.XPathAttr(box, s.cfg.Selector("rep_link"), "href")
		if err != nil {
			return nil, err
		}
		if info == nil || href == "" {
			continue
		}
		name, err := htmlutil.XPathText(info, s.cfg.Selector("rep_name"))
		if err != nil {
			return nil, err
		}
		text := strings.Join(htmlutil.NodeLines(info), " ")

		repUrl, err := htmlutil.ResolveURL(doc.Url.String(), href)
		if err != nil {
			return nil, err
		}
		fields := map[string]string{"name": name, "list": listUrl}
		if m := repDistrict.FindStringSubmatch(text); m != nil {
			fields["district"] = m[1]
		}
		switch {
		case strings.Contains(text, "Republican"):
			fields["party"] = "Republican"
		case strings.Contains(text, "Democrat"):
			fields["party"] = "Democrat"
		}
		if parsed, err := url.Parse(repUrl); err == nil {
			if id := parsed.Query().Get("MemberId"); id != "" {
				fields["photo"] = s.cfg.URLf("rep_photo", id)
			}
		}

		entries = append(entries, scraper.Entry{
			Chamber: person.Lower,
			ID:      repUrl,
			URL:     repUrl,
			Notice:  text,
			Fields:  fields,
		})
	}
	return entries, nil
}

func (s *Scraper) representative(ctx context.Context, entry scraper.Entry) (scraper.Raw, error) {
	if strings.Contains(entry.Notice, "Pending") {
		return scraper.Raw{}, scraper.Skip("seat pending: %s", entry.Notice)
	}

	doc, err := s.client.Document(ctx, entry.URL)
	if err != nil {
		return scraper.Raw{}, err
	}

	raw := scraper.Raw{
		Name:      entry.Field("name"),
		NameOrder: normalize.SurnameFirst,
		District:  entry.Field("district"),
		Party:     entry.Field("party"),
		PhotoURL:  entry.Field("photo"),
		Sources:   []string{entry.URL, entry.Field("list")},
		Links:     []string{entry.URL},
	}
	for _, note := range []string{scraper.CapitolOffice, scraper.DistrictOffice} {
		office, err := s.houseOffice(doc.Nodes[0], note)
		if err != nil {
			return scraper.Raw{}, err
		}
		if office != nil {
			raw.Offices = append(raw.Offices, *office)
		}
	}

	email, err := s.directoryEmail(entry.Field("name"))
	if err != nil {
		return scraper.Raw{}, err
	}
	if email == "" {
		slog.WarnContext(ctx, "no email in the house directory", "seat", entry.ID, "name", entry.Field("name"))
	} else {
		raw.Offices = withCapitolEmail(raw.Offices, email)
		raw.Sources = append(raw.Sources, s.cfg.URL("directory"))
	}
	return raw, nil
}

// houseOffice reads the text following a bold office heading:
//
//	<strong>Capitol Office</strong><br>
//	1402 The Capitol<br>
//	Phone: (850) 717-5001<br>
func (s *Scraper) houseOffice(root *html.Node, note string) (*scraper.Office, error) {
	pieces, err := htmlutil.XPathTexts(root, strings.Replace(s.cfg.Selector("rep_office"), "%s", note, 1))
	if err != nil || len(pieces) == 0 {
		return nil, err
	}
	office := &scraper.Office{Note: note}
	for _, piece := range pieces {
		if phone, ok := strings.CutPrefix(piece, "Phone:"); ok {
			office.Phone = strings.TrimSpace(phone)
			continue
		}
		office.Address = append(office.Address, piece)
	}
	return office, nil
}

func (s *Scraper) loadDirectory(ctx context.Context) error {
	match, err := regexp.Compile(s.cfg.Selector("email_match"))
	if err != nil {
		return err
	}
	pdf, err := s.client.Bytes(ctx, s.cfg.URL("directory"), fetch.Request{})
	if err != nil {
		return err
	}
	text, err := s.Converter.Convert(ctx, pdf)
	if err != nil {
		return err
	}

	s.directory = map[string]string{}
	for _, email := range match.FindAllString(text, -1) {
		s.directory[strings.ToLower(email)] = email
	}
	s.claims = normalize.EmailClaims{}
	return nil
}

var nameSeparators = regexp.MustCompile(`[-\s,]+`)

// emailCandidates lists First.Last@ local parts for every given name and
// nickname in a "Last, First "Nick"" name.
func emailCandidates(name string) []string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "La ", "La")
	name = strings.ReplaceAll(name, "ñ", "n")
	parts := nameSeparators.Split(strings.TrimSpace(name), -1)
	if len(parts) < 2 {
		return nil
	}
	last, given := parts[0], parts[1:]
	for _, g := range given {
		if g == "Patricia" {
			given = append(given, "Pat")
			break
		}
	}

	var out []string
	for _, g := range given {
		if g != "" {
			out = append(out, strings.ToLower(g+"."+last))
		}
	}
	return out
}

// directoryEmail confirms a guessed address against the directory, with a
// fuzzy match over the unclaimed addresses as fallback. An exact guess that
// was already given to another member is an error.
func (s *Scraper) directoryEmail(name string) (string, error) {
	if len(s.directory) == 0 {
		return "", nil
	}
	candidates := emailCandidates(name)

	found := ""
	for _, c := range candidates {
		if email, ok := s.directory[c+houseDomain]; ok {
			found = email
			break
		}
	}
	if found == "" && len(candidates) > 0 {
		locals := make([]string, 0, len(s.directory))
		for key := range s.directory {
			if _, claimed := s.claims[key]; claimed {
				continue
			}
			local, _, _ := strings.Cut(key, "@")
			locals = append(locals, local)
		}
		sort.Strings(locals)
		for _, c := range candidates {
			if match, _, ok := linker.BestMatch(c, locals, emailThreshold); ok {
				found = s.directory[match+houseDomain]
				break
			}
		}
	}
	if found == "" {
		return "", nil
	}
	return found, s.claims.Claim(found, name)
}
