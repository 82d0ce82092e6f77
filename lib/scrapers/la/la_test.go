package la

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"legiscrape/lib/fetch"
	"legiscrape/lib/person"
	"legiscrape/lib/scraper"

	"github.com/stretchr/testify/require"
)

const senatorsPage = `<html><body>
<table width="96%"><tr><td><a href="/senators/doe">Jane Doe</a></td></tr>
<tr><td><a href="/senators/district5">District 5</a></td></tr>
<tr><td><a href="/about">About</a></td></tr></table>
</body></html>`

const doePage = `<html><body>
<table><tr><td><font>President Pro Tempore Jane Doe</font></td></tr>
<tr><td><font>District - 12</font></td></tr></table>
<table>
<tr><td><font>Senator Information:</font></td></tr>
<tr><td>Party:</td><td>Democrat</td></tr>
<tr><td>District Office:</td><td>100 Main St.<br>Baton Rouge, LA 70801</td></tr>
<tr><td>District Phone</td><td>225-555-0100</td></tr>
<tr><td>Fax</td><td>555-0101</td></tr>
<tr><td>E-mail Address</td><td>doej@legis.la.gov</td></tr>
</table>
</body></html>`

const vacantSenatorPage = `<html><body>
<table><tr><td><font>Senator Vacant</font></td></tr>
<tr><td><font>District - 5</font></td></tr></table>
</body></html>`

const housePage = `<html><body>
<table id="body_ListView1_itemPlaceholderContainer">
<tr><th>Name</th><th>District</th><th>Office</th><th>Phone</th></tr>
<tr><th><a href="/H_Reps/members?ID=1">Smith, John</a></th><th>Dist 7</th><th>200 Elm St.<br>Monroe, LA 71201</th><th>9225) 555-0102</th></tr>
<tr><th><a href="/H_Reps/members?ID=2">Cracker, Polly</a></th><th>Dist 94</th><th>1 Canal St.</th><th>504-83POLLY (837-6559)</th></tr>
<tr><th><a href="/H_Reps/members?ID=3">District 50</a></th><th>Dist 50</th><th></th><th></th></tr>
</table>
</body></html>`

func repPage(name, party, email string) string {
	return `<html><body>
<span id="body_FormView5_FULLNAMELabel">` + name + `</span>
<span id="body_FormView5_PARTYAFFILIATIONLabel">` + party + `</span>
<span id="body_FormView6_EMAILADDRESSPUBLICLabel">` + email + `</span>
<img src="/h_reps/RepPics/rep.jpg">
</body></html>`
}

func newScraper(t *testing.T) (*Scraper, scraper.Config) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Senators/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(senatorsPage))
	})
	mux.HandleFunc("/senators/doe", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doePage))
	})
	mux.HandleFunc("/senators/district5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(vacantSenatorPage))
	})
	mux.HandleFunc("/H_Reps/H_Reps_FullInfo.aspx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(housePage))
	})
	mux.HandleFunc("/H_Reps/members", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ID") {
		case "1":
			w.Write([]byte(repPage("John Smith, I", "Republican", "smithj@legis.la.gov")))
		case "2":
			w.Write([]byte(repPage("Polly Cracker", "Independent", "")))
		case "3":
			w.Write([]byte(repPage("District 50", "", "")))
		default:
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := Defaults()
	cfg.URLs["members.upper"] = server.URL + "/Senators/"
	cfg.URLs["members.lower"] = server.URL + "/H_Reps/H_Reps_FullInfo.aspx"
	cfg.Selectors["senators"] = `//table[@width='96%']//tr//a[contains(@href, '/senators/')]`
	client, err := fetch.NewClient(fetch.Config{}, nil)
	require.NoError(t, err)
	return New(client, cfg), cfg
}

func TestListing(t *testing.T) {
	s, _ := newScraper(t)

	senators, err := s.Listing(context.Background(), person.Upper)
	require.NoError(t, err)
	require.Len(t, senators, 2)
	require.Equal(t, "Jane Doe", senators[0].Notice)

	reps, err := s.Listing(context.Background(), person.Lower)
	require.NoError(t, err)
	require.Len(t, reps, 3)
	require.Equal(t, "7", reps[0].Field("district"))
	require.Equal(t, "200 Elm St.\nMonroe, LA 71201", reps[0].Field("office"))
}

func TestRun(t *testing.T) {
	s, cfg := newScraper(t)
	sink := &scraper.Collect{}
	summary, err := scraper.Driver{Jurisdiction: "la", Extractor: s, Config: cfg, Sink: sink}.
		Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Records)
	require.Equal(t, 2, summary.Skipped)

	doe := sink.Records[0]
	require.Equal(t, person.Upper, doe.Chamber)
	require.Equal(t, "Jane Doe", doe.Name)
	require.Equal(t, "12", doe.District)
	require.Equal(t, "Democratic", doe.Party)
	require.Equal(t, []person.ContactDetail{
		{Kind: person.Address, Value: "100 Main St.\nBaton Rouge, LA 70801", Note: "District Office"},
		{Kind: person.Voice, Value: "225-555-0100", Note: "District Office"},
		{Kind: person.Fax, Value: "225-555-0101", Note: "District Office"},
		{Kind: person.Email, Value: "doej@legis.la.gov", Note: "District Office"},
	}, doe.ContactDetails)

	smith := sink.Records[1]
	require.Equal(t, "John Smith", smith.Name)
	require.Equal(t, "7", smith.District)
	require.Equal(t, "Republican", smith.Party)
	require.Contains(t, smith.PhotoURL, "/h_reps/RepPics/rep.jpg")
	require.Equal(t, []person.ContactDetail{
		{Kind: person.Address, Value: "200 Elm St.\nMonroe, LA 71201", Note: "District Office"},
		{Kind: person.Voice, Value: "(225) 555-0102", Note: "District Office"},
		{Kind: person.Email, Value: "smithj@legis.la.gov", Note: "District Office"},
	}, smith.ContactDetails)

	polly := sink.Records[2]
	require.Equal(t, "94", polly.District)
	require.Equal(t, person.ContactDetail{Kind: person.Voice, Value: "504-837-6559", Note: "District Office"}, polly.ContactDetails[1])
}
