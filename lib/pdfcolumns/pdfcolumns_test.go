package pdfcolumns

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	lines := []string{
		pad("Alpha one", 25) + "Beta one",
		"Alpha two",
		"",
		pad("Gamma", 25) + "Delta",
	}
	expected := []string{
		"Alpha one", "Alpha two", "", "Gamma",
		"Beta one", "", "", "Delta",
	}
	if diff := cmp.Diff(expected, Split(lines, 25)); diff != "" {
		t.Fatal(diff)
	}
}

func TestSplitRunes(t *testing.T) {
	// the offset counts runes, not bytes
	lines := []string{pad("Peña", 10) + "Ortíz"}
	require.Equal(t, []string{"Peña", "Ortíz"}, Split(lines, 10))
}

func TestEntries(t *testing.T) {
	header := regexp.MustCompile(`^Member of Assembly \d+`)
	lines := []string{
		"Member of Assembly 1",
		"Jane Doe (D)",
		"Member of Assembly 2",
		"John Smith (R)",
		"123 Main St",
		"",
		"",
		"Trailing note",
	}
	expected := [][]string{
		{"Member of Assembly 1", "Jane Doe (D)"},
		{"Member of Assembly 2", "John Smith (R)", "123 Main St"},
		{"Trailing note"},
	}
	if diff := cmp.Diff(expected, Entries(lines, header)); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, [][]string{{"a", "b"}, {"c"}}, Entries([]string{"a", "b", " ", "c"}, nil))
	require.Nil(t, Entries(nil, nil))
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-len([]rune(s)))
}

func TestRecover(t *testing.T) {
	var lines []string
	for page := 0; page < 2; page++ {
		lines = append(lines, "NEW YORK STATE ELECTED OFFICIALS", "Page banner line")
		for i := 1; i <= 2; i++ {
			left := page*4 + i
			right := left + 2
			lines = append(lines,
				pad(fmt.Sprintf("Member of Assembly %d", left), 40)+fmt.Sprintf("Member of Assembly %d", right),
				pad(fmt.Sprintf("Member %d (D)", left), 40)+fmt.Sprintf("Member %d (R)", right),
				"",
			)
		}
	}

	entries := Recover(lines, Options{
		Column:         40,
		Header:         regexp.MustCompile(`^Member of Assembly \d+`),
		PageHeader:     regexp.MustCompile(`^NEW YORK STATE ELECTED OFFICIALS`),
		PageHeaderSkip: 1,
	})
	require.Len(t, entries, 8)
	require.Equal(t, []string{"Member of Assembly 1", "Member 1 (D)"}, entries[0])
	require.Equal(t, []string{"Member of Assembly 5", "Member 5 (D)"}, entries[2])
	require.Equal(t, []string{"Member of Assembly 3", "Member 3 (R)"}, entries[4])
	require.Equal(t, []string{"Member of Assembly 8", "Member 8 (R)"}, entries[7])
}

func TestSplitLines(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\fc"))
}

func TestTextConverter(t *testing.T) {
	text, err := Text("fixed").Convert(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	require.Equal(t, "fixed", text)
}
