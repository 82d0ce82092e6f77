package normalize

import (
	"regexp"
	"strings"
)

// PhoneFix rewrites a known bad prefix in a site's phone numbers, for
// example a typed "9225) " instead of "(225) ".
type PhoneFix struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type PhoneRules struct {
	// prepended to numbers that only have the 7 local digits
	DefaultAreaCode string     `json:"default_area_code" yaml:"default_area_code"`
	Fixes           []PhoneFix `json:"fixes" yaml:"fixes"`
}

// from the first digit, or an opening parenthesis right before it, to the
// last digit
var phoneSpan = regexp.MustCompile(`\(?\d(?:[\d\s().\-/]*\d)?`)

// Phone validates a phone or fax number. The returned value is the number
// itself in the source's own formatting, without labels like "Office:" or
// notes like "(Capitol)". The second return value is false when the input
// does not have exactly 10 digits after the fixes and the default area code
// have been applied.
func Phone(raw string, rules PhoneRules) (string, bool) {
	s := strings.TrimSpace(raw)
	for _, fix := range rules.Fixes {
		if fix.From != "" && strings.HasPrefix(s, fix.From) {
			s = fix.To + s[len(fix.From):]
			break
		}
	}

	digits := digitsOf(s)
	switch {
	case len(digits) == 10:
		return phoneSpan.FindString(s), true
	case len(digits) == 7 && rules.DefaultAreaCode != "":
		return rules.DefaultAreaCode + "-" + digits[:3] + "-" + digits[3:], true
	}
	return "", false
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
