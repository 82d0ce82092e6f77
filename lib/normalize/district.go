package normalize

import (
	"regexp"
	"strings"

	"legiscrape/lib/person"
	"legiscrape/lib/textutil"
)

var (
	districtWord   = regexp.MustCompile(`(?i)\b(district|dist)\b\.?`)
	upperQualifier = regexp.MustCompile(`(?i)^(senate|SD)\b\s*`)
	lowerQualifier = regexp.MustCompile(`(?i)^(house|assembly|HD|AD)\b\s*`)
	ordinalSuffix  = regexp.MustCompile(`(?i)^(\d+)(st|nd|rd|th)$`)
	seatLetter     = regexp.MustCompile(`^(\d*)([a-zA-Z])$`)
)

// District reduces a raw district label ("District 05", "HD 12", "12th",
// "05a") to its short identifier ("5", "12", "12", "5A").
func District(raw string, chamber person.Chamber) string {
	s := textutil.CollapseWhitespace(raw)
	switch chamber {
	case person.Upper:
		s = upperQualifier.ReplaceAllString(s, "")
	case person.Lower:
		s = lowerQualifier.ReplaceAllString(s, "")
	}
	s = districtWord.ReplaceAllString(s, "")
	s = strings.Trim(s, " \t-:#.")
	s = ordinalSuffix.ReplaceAllString(s, "$1")

	i := 0
	for i < len(s)-1 && s[i] == '0' && s[i+1] >= '0' && s[i+1] <= '9' {
		i++
	}
	s = s[i:]

	if seatLetter.MatchString(s) {
		s = strings.ToUpper(s)
	}
	return s
}
