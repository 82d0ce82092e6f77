package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"legiscrape/lib/fetch"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Parties: normalize.PartyTable{"D": "Democratic", "R": "Republican"},
		Phone: normalize.PhoneRules{
			DefaultAreaCode: "907",
			Fixes:           []normalize.PhoneFix{{From: "9225) ", To: "(225) "}},
		},
		Chambers: map[person.Chamber]string{person.Upper: "Senate", person.Lower: "House"},
	}
}

type fakeExtractor struct {
	listing map[person.Chamber][]Entry
	details map[string]Raw
	errs    map[string]error
	listErr error
	fetched []string
}

func (f *fakeExtractor) Listing(ctx context.Context, chamber person.Chamber) ([]Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listing[chamber], nil
}

func (f *fakeExtractor) Detail(ctx context.Context, entry Entry) (Raw, error) {
	f.fetched = append(f.fetched, entry.ID)
	if err, ok := f.errs[entry.ID]; ok {
		return Raw{}, err
	}
	return f.details[entry.ID], nil
}

func raw(name, district, party string) Raw {
	return Raw{
		Name:      name,
		NameOrder: normalize.SurnameFirst,
		District:  district,
		Party:     party,
		Sources:   []string{"https://legis.example.gov/members"},
	}
}

func TestBuild(t *testing.T) {
	r := raw("Doe, Jane", "District 5", "D")
	r.PhotoURL = "https://legis.example.gov/photos/doe.jpg"
	r.Offices = []Office{
		{
			Note:    CapitolOffice,
			Address: []string{"State Capitol", "  Room 102 ", ""},
			Phone:   "555-1234",
			Fax:     "TBA",
			Email:   "mailto:jane.doe@legis.example.gov",
		},
		{
			Note:  DistrictOffice,
			Phone: "9225) 555-9999",
			Email: "not an email",
		},
	}
	r.Links = []string{"https://legis.example.gov/doe", "https://legis.example.gov/doe"}

	rec, warnings, err := Build(r, person.Upper, testConfig())
	require.NoError(t, err)

	expected := &person.Record{
		Name:     "Jane Doe",
		Party:    "Democratic",
		District: "5",
		Chamber:  person.Upper,
		PhotoURL: "https://legis.example.gov/photos/doe.jpg",
		ContactDetails: []person.ContactDetail{
			{Kind: person.Address, Value: "State Capitol\nRoom 102", Note: CapitolOffice},
			{Kind: person.Voice, Value: "907-555-1234", Note: CapitolOffice},
			{Kind: person.Email, Value: "jane.doe@legis.example.gov", Note: CapitolOffice},
			{Kind: person.Voice, Value: "(225) 555-9999", Note: DistrictOffice},
		},
		Sources: []string{"https://legis.example.gov/members"},
		Links:   []string{"https://legis.example.gov/doe"},
	}
	if diff := cmp.Diff(expected, rec); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []FieldWarning{
		{Field: "fax", Value: "TBA", Reason: "not a 10 digit number"},
		{Field: "email", Value: "not an email", Reason: "not a valid address"},
	}, warnings)
}

func TestBuildFatal(t *testing.T) {
	_, _, err := Build(raw("Doe, Jane", "5", "Green"), person.Upper, testConfig())
	var unmapped *normalize.UnmappedPartyError
	require.True(t, errors.As(err, &unmapped))
	require.Equal(t, "Green", unmapped.Code)

	_, _, err = Build(raw("Doe, Jane", "", "D"), person.Upper, testConfig())
	var incomplete *person.IncompleteRecordError
	require.True(t, errors.As(err, &incomplete))
	require.Equal(t, "district", incomplete.Field)

	noSource := raw("Doe, Jane", "5", "D")
	noSource.Sources = nil
	_, _, err = Build(noSource, person.Upper, testConfig())
	require.True(t, errors.As(err, &incomplete))
	require.Equal(t, "source", incomplete.Field)
}

func TestBuildRelativePhoto(t *testing.T) {
	r := raw("Jane Doe", "5", "D")
	r.PhotoURL = "/photos/doe.jpg"
	rec, warnings, err := Build(r, person.Lower, testConfig())
	require.NoError(t, err)
	require.Equal(t, "", rec.PhotoURL)
	require.Len(t, warnings, 1)
	require.Equal(t, "photo_url", warnings[0].Field)
}

func TestDriverRun(t *testing.T) {
	extractor := &fakeExtractor{
		listing: map[person.Chamber][]Entry{
			person.Upper: {
				{ID: "1"},
				{ID: "2", Notice: "Vacant"},
				{ID: "3"},
				{ID: "4"},
				{ID: "5"},
				{ID: "6"},
			},
			person.Lower: {
				{ID: "1"},
			},
		},
		details: map[string]Raw{
			"1": raw("Doe, Jane", "1", "D"),
			"3": raw("Smith, John", "3", "R"),
			// leadership listed a second time
			"4": raw("Doe, Jane", "1", "D"),
			"6": raw("Seat, Vacant", "6", "R"),
		},
		errs: map[string]error{
			"5": &fetch.StatusError{Url: "https://legis.example.gov/5", Status: 404},
		},
	}
	sink := &Collect{}
	driver := Driver{
		Jurisdiction: "xx",
		Extractor:    extractor,
		Config:       testConfig(),
		Sink:         sink,
	}

	summary, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Summary{Jurisdiction: "xx", Records: 3, Skipped: 4}, summary)
	require.Equal(t, []string{"1", "3", "4", "5", "6", "1"}, extractor.fetched)

	var names []string
	for _, rec := range sink.Records {
		names = append(names, fmt.Sprintf("%s %s %s", rec.Chamber, rec.District, rec.Name))
	}
	require.Equal(t, []string{"upper 1 Jane Doe", "upper 3 John Smith", "lower 1 Jane Doe"}, names)
}

func TestDriverSkip(t *testing.T) {
	extractor := &fakeExtractor{
		listing: map[person.Chamber][]Entry{person.Lower: {{ID: "1"}, {ID: "2"}}},
		details: map[string]Raw{"2": raw("Doe, Jane", "2", "D")},
		errs:    map[string]error{"1": Skip("no detail page")},
	}
	sink := &Collect{}
	summary, err := Driver{Jurisdiction: "xx", Extractor: extractor, Config: testConfig(), Sink: sink}.
		Run(context.Background(), person.Lower)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Records)
	require.Equal(t, 1, summary.Skipped)
}

func TestDriverFatal(t *testing.T) {
	testCases := []struct {
		name      string
		extractor *fakeExtractor
		check     func(err error) bool
	}{
		{
			name: "unmapped party",
			extractor: &fakeExtractor{
				listing: map[person.Chamber][]Entry{person.Upper: {{ID: "1"}, {ID: "2"}}},
				details: map[string]Raw{"1": raw("Doe, Jane", "1", "X"), "2": raw("Smith, John", "2", "R")},
			},
			check: func(err error) bool {
				var target *normalize.UnmappedPartyError
				return errors.As(err, &target)
			},
		},
		{
			name: "ambiguous email",
			extractor: &fakeExtractor{
				listing: map[person.Chamber][]Entry{person.Upper: {{ID: "1"}}},
				errs: map[string]error{"1": &normalize.AmbiguousEmailError{
					Email: "j.doe@example.gov", First: "Jane Doe", Second: "John Doe",
				}},
			},
			check: func(err error) bool {
				var target *normalize.AmbiguousEmailError
				return errors.As(err, &target)
			},
		},
		{
			name: "listing failure",
			extractor: &fakeExtractor{
				listErr: &fetch.StatusError{Url: "https://legis.example.gov", Status: 500},
			},
			check: func(err error) bool {
				var target *fetch.StatusError
				return errors.As(err, &target)
			},
		},
	}

	for _, test := range testCases {
		sink := &Collect{}
		_, err := Driver{Jurisdiction: "xx", Extractor: test.extractor, Config: testConfig(), Sink: sink}.
			Run(context.Background(), person.Upper)
		require.Error(t, err, test.name)
		require.True(t, test.check(err), test.name)
		require.Empty(t, sink.Records, test.name)
	}
}

func TestJSONLines(t *testing.T) {
	var buffer bytes.Buffer
	sink := NewJSONLines(&buffer)
	collect := &Collect{}
	out := Tee(sink, nil, collect)

	rec, _, err := Build(raw("Doe, Jane", "5", "D"), person.Upper, testConfig())
	require.NoError(t, err)
	require.NoError(t, out.Put(context.Background(), rec))
	require.NoError(t, out.Put(context.Background(), rec))

	lines := bytes.Split(bytes.TrimSpace(buffer.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var decoded person.Record
	require.NoError(t, json.Unmarshal(lines[0], &decoded))
	require.Equal(t, *rec, decoded)
	require.Len(t, collect.Records, 2)
}

func TestAssignUnlabeledPhone(t *testing.T) {
	offices := AssignUnlabeledPhone(nil, "919-555-0001")
	require.Equal(t, []Office{{Note: CapitolOffice, Phone: "919-555-0001"}}, offices)

	offices = AssignUnlabeledPhone(offices, "919-555-0002")
	require.Equal(t, []Office{
		{Note: CapitolOffice, Phone: "919-555-0001"},
		{Note: DistrictOffice, Phone: "919-555-0002"},
	}, offices)

	offices = AssignUnlabeledPhone([]Office{{Note: CapitolOffice, Address: []string{"16 W Jones St"}}}, "919-555-0003")
	require.Equal(t, []Office{{Note: CapitolOffice, Address: []string{"16 W Jones St"}, Phone: "919-555-0003"}}, offices)

	require.Empty(t, AssignUnlabeledPhone(nil, ""))
}
