package fl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"legiscrape/lib/fetch"
	"legiscrape/lib/normalize"
	"legiscrape/lib/pdfcolumns"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/stretchr/testify/require"
)

const senatorsPage = `<html><body><table>
<tr><td>3</td><td>Democrat</td><td><a class="senatorLink" href="/Senators/S3">Doe <span>, Jane</span></a></td></tr>
<tr><td>5</td><td>Republican</td><td><a class="senatorLink" href="/Senators/S5">Vacant</a></td></tr>
</table></body></html>`

const doePage = `<html><body>
<div id="sidebar"><img src="/images/seal.png"><img src="/photos/doe.jpg"></div>
<h4>Tallahassee Office</h4>
<div><p>404 South Monroe Street</p><p>Tallahassee, FL 32399-1100</p><p>(850) 487-5003</p><p>FAX (850) 487-5004</p></div>
<h4>District Office</h4>
<div><p>Open Monday through Friday</p><p>100 Main St.</p><p>Pensacola, FL 32501</p><p>(850) 555-0100</p></div>
<a href="mailto:doe.jane@flsenate.gov">Email Senator Doe</a>
</body></html>`

const repsPage = `<html><body><div id="mb-2">
<div class="team-box"><a href="/Sections/Representatives/details.aspx?MemberId=4701"><div class="team-txt"><h5>Smith, John "Jack"</h5><p>Republican</p><p>District: 12</p></div></a></div>
<div class="team-box"><a href="/Sections/Representatives/details.aspx?MemberId=4702"><div class="team-txt"><h5>Lopez, Ana</h5><p>Democrat</p><p>District: 20</p></div></a></div>
<div class="team-box"><a href="/Sections/Representatives/details.aspx?MemberId=4703"><div class="team-txt"><h5>Seat 30</h5><p>District: 30</p><p>Pending</p></div></a></div>
<div class="team-box"><a href="/Sections/Representatives/details.aspx?MemberId=4704"><div class="team-txt"><h5>Smyth, Jack</h5><p>Republican</p><p>District: 40</p></div></a></div>
</div></body></html>`

const repPage = `<html><body>
<div><strong>Capitol Office</strong><br>1402 The Capitol<br>402 South Monroe Street<br>Tallahassee, FL 32399-1300<br>Phone: (850) 717-5012<br></div>
<div><strong>District Office</strong><br>100 Bay St.<br>Phone:<br></div>
</body></html>`

const directory = `
  HOUSE DIRECTORY
  SMITH, JOHN "JACK" (R) ........ Jack.Smith@myfloridahouse.gov
  LOPEZ, ANA (D) ................ Ana.Lopes@myfloridahouse.gov
  Clerk's Office ................ clerk@myfloridahouse.gov
`

func newScraper(t *testing.T) (*Scraper, scraper.Config) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Senators/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Senators/":
			w.Write([]byte(senatorsPage))
		case "/Senators/S3":
			w.Write([]byte(doePage))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/Sections/Representatives/representatives.aspx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(repsPage))
	})
	mux.HandleFunc("/Sections/Representatives/details.aspx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(repPage))
	})
	mux.HandleFunc("/HouseDirectory.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := Defaults()
	cfg.URLs["members.upper"] = server.URL + "/Senators/"
	cfg.URLs["members.lower"] = server.URL + "/Sections/Representatives/representatives.aspx"
	cfg.URLs["directory"] = server.URL + "/HouseDirectory.pdf"
	cfg.URLs["rep_photo"] = server.URL + "/photos/%s.jpg"
	client, err := fetch.NewClient(fetch.Config{}, nil)
	require.NoError(t, err)

	s := New(client, cfg)
	s.Converter = pdfcolumns.Text(directory)
	return s, cfg
}

func TestEmailCandidates(t *testing.T) {
	testCases := []struct {
		name     string
		expected []string
	}{
		{`Smith, John "Jack"`, []string{"john.smith", "jack.smith"}},
		{"Ortiz, Patricia", []string{"patricia.ortiz", "pat.ortiz"}},
		{"Nuñez, Ana Maria", []string{"ana.nunez", "maria.nunez"}},
		{"Cher", nil},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, emailCandidates(test.name), test.name)
	}
}

func TestListing(t *testing.T) {
	s, cfg := newScraper(t)

	senators, err := s.Listing(context.Background(), person.Upper)
	require.NoError(t, err)
	require.Len(t, senators, 2)
	require.Equal(t, "Doe, Jane", senators[0].Field("name"))
	require.Equal(t, "3", senators[0].Field("district"))
	require.Equal(t, "Democrat", senators[0].Field("party"))

	reps, err := s.Listing(context.Background(), person.Lower)
	require.NoError(t, err)
	require.Len(t, reps, 4)
	require.Equal(t, "12", reps[0].Field("district"))
	require.Equal(t, "Republican", reps[0].Field("party"))
	require.Equal(t, cfg.URLf("rep_photo", "4701"), reps[0].Field("photo"))
	require.Len(t, s.directory, 3)
}

func TestRun(t *testing.T) {
	s, cfg := newScraper(t)
	sink := &scraper.Collect{}
	summary, err := scraper.Driver{Jurisdiction: "fl", Extractor: s, Config: cfg, Sink: sink}.
		Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, summary.Records)
	require.Equal(t, 2, summary.Skipped)

	doe := sink.Records[0]
	require.Equal(t, "Jane Doe", doe.Name)
	require.Equal(t, "Democratic", doe.Party)
	require.Contains(t, doe.PhotoURL, "/photos/doe.jpg")
	require.Equal(t, []person.ContactDetail{
		{Kind: person.Address, Value: "404 South Monroe Street\nTallahassee, FL 32399-1100", Note: "Capitol Office"},
		{Kind: person.Voice, Value: "(850) 487-5003", Note: "Capitol Office"},
		{Kind: person.Fax, Value: "(850) 487-5004", Note: "Capitol Office"},
		{Kind: person.Email, Value: "doe.jane@flsenate.gov", Note: "Capitol Office"},
		{Kind: person.Address, Value: "100 Main St.\nPensacola, FL 32501", Note: "District Office"},
		{Kind: person.Voice, Value: "(850) 555-0100", Note: "District Office"},
	}, doe.ContactDetails)

	smith := sink.Records[1]
	require.Equal(t, `John "Jack" Smith`, smith.Name)
	require.Equal(t, []person.ContactDetail{
		{Kind: person.Address, Value: "1402 The Capitol\n402 South Monroe Street\nTallahassee, FL 32399-1300", Note: "Capitol Office"},
		{Kind: person.Voice, Value: "(850) 717-5012", Note: "Capitol Office"},
		{Kind: person.Email, Value: "Jack.Smith@myfloridahouse.gov", Note: "Capitol Office"},
		{Kind: person.Address, Value: "100 Bay St.", Note: "District Office"},
	}, smith.ContactDetails)
	require.Contains(t, smith.Sources, cfg.URL("directory"))

	lopez := sink.Records[2]
	require.Equal(t, person.ContactDetail{Kind: person.Email, Value: "Ana.Lopes@myfloridahouse.gov", Note: "Capitol Office"}, lopez.ContactDetails[2])

	// Smyth's closest directory address is already Smith's
	smyth := sink.Records[3]
	require.Equal(t, "Jack Smyth", smyth.Name)
	for _, detail := range smyth.ContactDetails {
		require.NotEqual(t, person.Email, detail.Kind)
	}
	require.NotContains(t, smyth.Sources, cfg.URL("directory"))
}

func TestDirectoryEmail(t *testing.T) {
	newDirectory := func() *Scraper {
		return &Scraper{
			directory: map[string]string{
				"jack.smith@myfloridahouse.gov": "Jack.Smith@myfloridahouse.gov",
				"ana.lopes@myfloridahouse.gov":  "Ana.Lopes@myfloridahouse.gov",
			},
			claims: normalize.EmailClaims{},
		}
	}

	testCases := []struct {
		name     string
		claimed  map[string]string
		expected string
	}{
		{name: `Smith, John "Jack"`, expected: "Jack.Smith@myfloridahouse.gov"},
		{name: "Lopez, Ana", expected: "Ana.Lopes@myfloridahouse.gov"},
		{name: "Smyth, Jack", expected: "Jack.Smith@myfloridahouse.gov"},
		{
			name:     "Smyth, Jack",
			claimed:  map[string]string{"Jack.Smith@myfloridahouse.gov": `Smith, John "Jack"`},
			expected: "",
		},
		{name: "Ortiz, Patricia", expected: ""},
	}

	for _, test := range testCases {
		s := newDirectory()
		for email, who := range test.claimed {
			require.NoError(t, s.claims.Claim(email, who))
		}
		email, err := s.directoryEmail(test.name)
		require.NoError(t, err, test.name)
		require.Equal(t, test.expected, email, test.name)
	}

	// an exact guess already given to someone else is still an error
	s := newDirectory()
	require.NoError(t, s.claims.Claim("Jack.Smith@myfloridahouse.gov", "Smith, Jack"))
	_, err := s.directoryEmail(`Smith, John "Jack"`)
	var ambiguous *normalize.AmbiguousEmailError
	require.True(t, errors.As(err, &ambiguous), "expected AmbiguousEmailError, got %v", err)
	require.Equal(t, "Jack.Smith@myfloridahouse.gov", ambiguous.Email)
}
