package normalize

import (
	"regexp"
	"strings"

	"legiscrape/lib/textutil"
)

type NameOrder int

const (
	GivenFirst NameOrder = iota
	// "Last, First [Suffix]"
	SurnameFirst
)

var titlePrefix = regexp.MustCompile(
	`(?i)^(president pro tempore|speaker pro tempore|majority leader|minority leader|senator|representative|assemblymember|assemblyman|assemblywoman|delegate|president|speaker|rep\.|sen\.|del\.|hon\.)\s+`,
)

func Name(raw string, order NameOrder) string {
	name := textutil.CollapseWhitespace(raw)
	for {
		stripped := titlePrefix.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}

	if order == SurnameFirst && strings.Contains(name, ",") {
		var parts []string
		for _, p := range strings.Split(name, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) >= 2 {
			parts[0], parts[1] = parts[1], parts[0]
		}
		name = strings.Join(parts, " ")
	}

	return textutil.CollapseWhitespace(name)
}
