package scraper

import (
	"fmt"

	"legiscrape/lib/htmlutil"
	"legiscrape/lib/normalize"
	"legiscrape/lib/person"
)

// FieldWarning is a field Build dropped because it did not normalize.
type FieldWarning struct {
	Field  string
	Value  string
	Reason string
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Field, w.Value, w.Reason)
}

// Build normalizes raw into a record. Malformed contact fields are left
// out and reported as warnings, an unmapped party or a missing required
// field is an error.
func Build(raw Raw, chamber person.Chamber, cfg Config) (*person.Record, []FieldWarning, error) {
	var warnings []FieldWarning

	party, err := normalize.Party(raw.Party, chamber, cfg.Parties)
	if err != nil {
		return nil, nil, err
	}

	photo := raw.PhotoURL
	if photo != "" && !htmlutil.IsAbsoluteURL(photo) {
		warnings = append(warnings, FieldWarning{Field: "photo_url", Value: photo, Reason: "not an absolute url"})
		photo = ""
	}

	rec, err := person.New(
		normalize.Name(raw.Name, raw.NameOrder),
		normalize.District(raw.District, chamber),
		party,
		chamber,
		photo,
	)
	if err != nil {
		return nil, nil, err
	}

	for _, office := range raw.Offices {
		rec.AddContact(person.Address, normalize.Address(office.Address...), office.Note)

		if office.Phone != "" {
			phone, ok := normalize.Phone(office.Phone, cfg.Phone)
			if ok {
				rec.AddContact(person.Voice, phone, office.Note)
			} else {
				warnings = append(warnings, FieldWarning{Field: "phone", Value: office.Phone, Reason: "not a 10 digit number"})
			}
		}
		if office.Fax != "" {
			fax, ok := normalize.Phone(office.Fax, cfg.Phone)
			if ok {
				rec.AddContact(person.Fax, fax, office.Note)
			} else {
				warnings = append(warnings, FieldWarning{Field: "fax", Value: office.Fax, Reason: "not a 10 digit number"})
			}
		}
		if office.Email != "" {
			email, ok := normalize.Email(office.Email)
			if ok {
				rec.AddContact(person.Email, email, office.Note)
			} else {
				warnings = append(warnings, FieldWarning{Field: "email", Value: office.Email, Reason: "not a valid address"})
			}
		}
	}

	for _, source := range raw.Sources {
		rec.AddSource(source)
	}
	for _, link := range raw.Links {
		rec.AddLink(link)
	}

	err = rec.Validate()
	if err != nil {
		return nil, nil, err
	}
	return rec, warnings, nil
}
