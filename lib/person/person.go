package person

import (
	"fmt"
	"regexp"
	"strings"
)

type Chamber string

const (
	Upper Chamber = "upper"
	Lower Chamber = "lower"
)

func (c Chamber) Valid() bool {
	return c == Upper || c == Lower
}

func ParseChamber(s string) (Chamber, error) {
	c := Chamber(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown chamber %q, expected upper or lower", s)
	}
	return c, nil
}

type ContactKind string

const (
	Address ContactKind = "address"
	Voice   ContactKind = "voice"
	Fax     ContactKind = "fax"
	Email   ContactKind = "email"
)

type ContactDetail struct {
	Kind  ContactKind `json:"kind"`
	Value string      `json:"value"`
	Note  string      `json:"note"`
}

// Record is one legislator as emitted by a scrape run.
type Record struct {
	Name           string          `json:"name"`
	Party          string          `json:"party"`
	District       string          `json:"district"`
	Chamber        Chamber         `json:"chamber"`
	PhotoURL       string          `json:"photo_url,omitempty"`
	ContactDetails []ContactDetail `json:"contact_details"`
	Sources        []string        `json:"sources"`
	Links          []string        `json:"links"`
}

type IncompleteRecordError struct {
	Field string
	Name  string
}

func (e *IncompleteRecordError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("incomplete record: missing %s", e.Field)
	}
	return fmt.Sprintf("incomplete record for %s: missing %s", e.Name, e.Field)
}

func New(name, district, party string, chamber Chamber, photoURL string) (*Record, error) {
	name = strings.TrimSpace(name)
	district = strings.TrimSpace(district)
	party = strings.TrimSpace(party)

	switch {
	case name == "":
		return nil, &IncompleteRecordError{Field: "name"}
	case district == "":
		return nil, &IncompleteRecordError{Field: "district", Name: name}
	case party == "":
		return nil, &IncompleteRecordError{Field: "party", Name: name}
	case !chamber.Valid():
		return nil, &IncompleteRecordError{Field: "chamber", Name: name}
	}

	return &Record{
		Name:           name,
		District:       district,
		Party:          party,
		Chamber:        chamber,
		PhotoURL:       strings.TrimSpace(photoURL),
		ContactDetails: []ContactDetail{},
		Sources:        []string{},
		Links:          []string{},
	}, nil
}

// AddContact does nothing when value is blank, most sources only
// conditionally list a given field.
func (r *Record) AddContact(kind ContactKind, value, note string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	r.ContactDetails = append(r.ContactDetails, ContactDetail{
		Kind:  kind,
		Value: value,
		Note:  strings.TrimSpace(note),
	})
}

func (r *Record) AddSource(url string) {
	r.Sources = addUnique(r.Sources, url)
}

func (r *Record) AddLink(url string) {
	r.Links = addUnique(r.Links, url)
}

func addUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// Key identifies a seat holder within one chamber of one run.
func (r *Record) Key() string {
	return r.Name + "|" + r.District
}

func (r *Record) Validate() error {
	switch {
	case r.Name == "":
		return &IncompleteRecordError{Field: "name"}
	case r.District == "":
		return &IncompleteRecordError{Field: "district", Name: r.Name}
	case r.Party == "":
		return &IncompleteRecordError{Field: "party", Name: r.Name}
	case !r.Chamber.Valid():
		return &IncompleteRecordError{Field: "chamber", Name: r.Name}
	case len(r.Sources) == 0:
		return &IncompleteRecordError{Field: "source", Name: r.Name}
	}
	return nil
}

var vacancyMarkers = regexp.MustCompile(`(?i)\b(vacant|resigned|deceased|to be announced)\b`)

// IsVacantOrRetired reports whether listing text marks a seat that has no
// sitting legislator.
func IsVacantOrRetired(text string) bool {
	return vacancyMarkers.MatchString(text)
}
