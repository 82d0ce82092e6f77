package normalize

import (
	"strings"

	"legiscrape/lib/textutil"
)

// Address joins the non-empty lines of an address block with newlines.
// Arguments may themselves contain newlines.
func Address(lines ...string) string {
	var out []string
	for _, l := range lines {
		out = append(out, textutil.Lines(l)...)
	}
	return strings.Join(out, "\n")
}
