package md

import (
	"context"
	"errors"
	"testing"

	"legiscrape/lib/person"
	"legiscrape/lib/scraper"
	"legiscrape/lib/testutil"

	"github.com/stretchr/testify/require"
)

func cell(photo, href, name, district string) string {
	return `<div class="member-index-cell"><div><div>
  <div><a href="#"><img src="` + photo + `"></a></div>
  <div><a href="` + href + `">` + name + `</a><br>` + district + `<br>Somewhere County</div>
</div></div></div>`
}

var senatePage = `<html><body>` +
	cell("/img/doe_small.jpg", "/Members/Details/doe", "Doe, Jane", "District 12A") +
	cell("/img/doe_small.jpg", "/Members/Details/doe", "Doe, Jane", "District 12A") +
	cell("/img/tba.jpg", "", "To Be Announced", "District 5") +
	cell("/img/roe.jpg", "/Members/Details/roe", "Roe, Lee, Jr.", "District 7") +
	cell("/img/smith.jpg", "/Members/Details/smith", "Smith, John", "District 3") +
	`</body></html>`

const doePage = `<html><body>
<dl>
  <dt>Party</dt><dd>Democrat</dd>
  <dt>Annapolis Info</dt>
  <dd><dl>
    <dt>Address</dt><dd>James Senate Office Building<br>11 Bladen Street, Room 123<br>Annapolis, MD 21401</dd>
    <dt>Contact</dt><dd>Phone 410-841-3578 | 301-858-3578<br>Fax 410-841--3100</dd>
  </dl></dd>
</dl>
<a href="mailto:jane.doe@senate.state.md.us">jane.doe@senate.state.md.us</a>
<a href="mailto:jane.doe@senate.state.md.us?subject=Hello">Email</a>
<img class="sponimg" src="/img/doe.jpg">
</body></html>`

const roePage = `<html><body><dl><dt>Party</dt><dd>Republican</dd></dl></body></html>`

const smithPage = `<html><body>
<dl><dt>Party</dt><dd>Republican</dd></dl>
<a href="mailto:john.smith@senate.state.md.us">Email</a>
<a href="mailto:scheduler@senate.state.md.us">Scheduling</a>
</body></html>`

func newScraper(t *testing.T) (*Scraper, scraper.Config) {
	pages := map[string]string{
		"/mgawebsite/Members/Index/senate": senatePage,
		"/Members/Details/doe":             doePage,
		"/Members/Details/roe":             roePage,
		"/Members/Details/smith":           smithPage,
	}
	server := testutil.ServePages(t, pages)

	cfg := Defaults()
	cfg.URLs["members"] = server.URL + "/mgawebsite/Members/Index/%s"
	client := testutil.Client(t)
	return New(client, cfg), cfg
}

func TestListing(t *testing.T) {
	s, _ := newScraper(t)
	entries, err := s.Listing(context.Background(), person.Upper)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	require.Equal(t, "Doe, Jane", entries[0].Field("name"))
	require.Equal(t, "12A", entries[0].Field("district"))
	require.Contains(t, entries[0].Field("photo"), "/img/doe_small.jpg")
	require.Contains(t, entries[2].Notice, "To Be Announced")
}

func TestRun(t *testing.T) {
	s, cfg := newScraper(t)
	sink := &scraper.Collect{}
	summary, err := scraper.Driver{Jurisdiction: "md", Extractor: s, Config: cfg, Sink: sink}.
		Run(context.Background(), person.Upper)

	var multiple *MultipleEmailsError
	require.True(t, errors.As(err, &multiple), "expected MultipleEmailsError, got %v", err)
	require.Len(t, multiple.Emails, 2)

	require.Equal(t, 2, summary.Records)
	// the repeated leadership row and the unannounced seat
	require.Equal(t, 2, summary.Skipped)

	doe := sink.Records[0]
	require.Equal(t, "Jane Doe", doe.Name)
	require.Equal(t, "12A", doe.District)
	require.Equal(t, "Democratic", doe.Party)
	require.Contains(t, doe.PhotoURL, "/img/doe.jpg")
	require.Equal(t, []person.ContactDetail{
		{Kind: person.Address, Value: "James Senate Office Building\n11 Bladen Street, Room 123\nAnnapolis, MD 21401", Note: "Capitol Office"},
		{Kind: person.Voice, Value: "410-841-3578", Note: "Capitol Office"},
		{Kind: person.Fax, Value: "410-841-3100", Note: "Capitol Office"},
		{Kind: person.Email, Value: "jane.doe@senate.state.md.us", Note: "Capitol Office"},
	}, doe.ContactDetails)

	roe := sink.Records[1]
	require.Equal(t, "Lee Roe Jr.", roe.Name)
	require.Contains(t, roe.PhotoURL, "/img/roe.jpg")
	require.Empty(t, roe.ContactDetails)
}

func TestPhoneLines(t *testing.T) {
	phone, fax := phoneLines([]string{"Phone 410-841-3578 | 301-858-3578", "Fax 410-841- 3100"})
	require.Equal(t, "410-841-3578", phone)
	require.Equal(t, "410-841-3100", fax)
}
