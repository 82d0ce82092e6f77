// Package pdfcolumns recovers entries from the text of two-column PDF
// rosters after they have been converted with a layout preserving
// converter.
package pdfcolumns

import (
	"regexp"
	"strings"
)

// Split cuts every line at rune offset column and returns all left halves
// followed by all right halves. Blank halves are kept so blank lines still
// separate entries.
func Split(lines []string, column int) []string {
	left := make([]string, 0, len(lines))
	right := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)
		if column >= len(runes) {
			left = append(left, strings.TrimSpace(line))
			right = append(right, "")
			continue
		}
		if column < 0 {
			column = 0
		}
		left = append(left, strings.TrimSpace(string(runes[:column])))
		right = append(right, strings.TrimSpace(string(runes[column:])))
	}
	return append(left, right...)
}

// Entries groups consecutive non-empty lines. A line matching header also
// closes the current entry and opens the next one. With a nil header only
// blank lines delimit.
func Entries(lines []string, header *regexp.Regexp) [][]string {
	var entries [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			entries = append(entries, current)
			current = nil
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if header != nil && header.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return entries
}

type Options struct {
	Column int
	Header *regexp.Regexp
	// lines matching PageHeader are dropped along with the PageHeaderSkip
	// lines that follow them
	PageHeader     *regexp.Regexp
	PageHeaderSkip int
}

// Recover drops page banners, splits the columns and groups entries.
func Recover(lines []string, opts Options) [][]string {
	return Entries(Split(dropBanners(lines, opts), opts.Column), opts.Header)
}

func dropBanners(lines []string, opts Options) []string {
	if opts.PageHeader == nil {
		return lines
	}
	out := make([]string, 0, len(lines))
	skip := 0
	for _, line := range lines {
		if skip > 0 {
			skip--
			continue
		}
		if opts.PageHeader.MatchString(line) {
			skip = opts.PageHeaderSkip
			continue
		}
		out = append(out, line)
	}
	return out
}

// SplitLines splits converter output into lines, dropping form feeds.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\f", "\n")
	return strings.Split(text, "\n")
}
