// Package normalize turns raw strings lifted from legislature websites
// into the canonical forms stored on person records.
package normalize

import (
	"fmt"
	"strings"

	"legiscrape/lib/person"
)

// PartyTable maps a jurisdiction's raw party codes ("D", "DFL",
// "Non Affiliated") to party names.
type PartyTable map[string]string

type UnmappedPartyError struct {
	Code    string
	Chamber person.Chamber
}

func (e *UnmappedPartyError) Error() string {
	if e.Chamber == "" {
		return fmt.Sprintf("unmapped party code %q", e.Code)
	}
	return fmt.Sprintf("unmapped party code %q (%s chamber)", e.Code, e.Chamber)
}

// Party looks up raw in table. The lookup is exact and case-sensitive,
// an absent code is always an error.
func Party(raw string, chamber person.Chamber, table PartyTable) (string, error) {
	code := strings.TrimSpace(raw)
	party, ok := table[code]
	if !ok || party == "" {
		return "", &UnmappedPartyError{Code: code, Chamber: chamber}
	}
	return party, nil
}
