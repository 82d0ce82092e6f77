package person

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name     string
		district string
		party    string
		chamber  Chamber
		field    string
	}{
		{name: "", district: "5", party: "Democratic", chamber: Upper, field: "name"},
		{name: "Jane Doe", district: " ", party: "Democratic", chamber: Upper, field: "district"},
		{name: "Jane Doe", district: "5", party: "", chamber: Lower, field: "party"},
		{name: "Jane Doe", district: "5", party: "Republican", chamber: "senate", field: "chamber"},
	}

	for _, test := range testCases {
		_, err := New(test.name, test.district, test.party, test.chamber, "")
		var incomplete *IncompleteRecordError
		require.True(t, errors.As(err, &incomplete), "expected IncompleteRecordError, got %v", err)
		require.Equal(t, test.field, incomplete.Field)
	}

	rec, err := New(" Jane Doe ", "5", "Democratic", Upper, "https://example.gov/doe.jpg")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", rec.Name)
	require.Empty(t, rec.ContactDetails)
}

func TestAddContact(t *testing.T) {
	rec, err := New("Jane Doe", "5", "Democratic", Lower, "")
	require.NoError(t, err)

	rec.AddContact(Voice, "", "Capitol Office")
	rec.AddContact(Voice, "   ", "Capitol Office")
	require.Len(t, rec.ContactDetails, 0)

	rec.AddContact(Address, "120 4th Ave\nJuneau, AK 99801", "Capitol Office")
	rec.AddContact(Voice, "907-555-1234", "Capitol Office")
	rec.AddContact(Voice, "907-555-1234", "Capitol Office")

	expected := []ContactDetail{
		{Kind: Address, Value: "120 4th Ave\nJuneau, AK 99801", Note: "Capitol Office"},
		{Kind: Voice, Value: "907-555-1234", Note: "Capitol Office"},
		{Kind: Voice, Value: "907-555-1234", Note: "Capitol Office"},
	}
	if diff := cmp.Diff(expected, rec.ContactDetails); diff != "" {
		t.Fatal(diff)
	}
}

func TestSourcesAndLinks(t *testing.T) {
	rec, err := New("Jane Doe", "5", "Democratic", Lower, "")
	require.NoError(t, err)

	require.Error(t, rec.Validate())

	rec.AddSource("https://example.gov/members")
	rec.AddSource("https://example.gov/members")
	rec.AddSource("https://example.gov/doe")
	rec.AddLink("https://example.gov/doe")
	rec.AddLink("https://example.gov/doe")
	rec.AddLink("")

	require.Equal(t, []string{"https://example.gov/members", "https://example.gov/doe"}, rec.Sources)
	require.Equal(t, []string{"https://example.gov/doe"}, rec.Links)
	require.NoError(t, rec.Validate())
	require.Equal(t, "Jane Doe|5", rec.Key())
}

func TestIsVacantOrRetired(t *testing.T) {
	testCases := []struct {
		text     string
		expected bool
	}{
		{"Senator Vacant", true},
		{"VACANT SEAT", true},
		{"Jane Doe (Resigned 3/1/2020)", true},
		{"Deceased", true},
		{"Senator To Be Announced", true},
		{"Senator Jane Doe", false},
		{"Vacanti, Robert", false},
		{"", false},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, IsVacantOrRetired(test.text), test.text)
	}
}

func TestParseChamber(t *testing.T) {
	c, err := ParseChamber(" Upper ")
	require.NoError(t, err)
	require.Equal(t, Upper, c)

	_, err = ParseChamber("house")
	require.Error(t, err)
}
