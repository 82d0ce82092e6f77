package linker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestCreateImplicitLinks(t *testing.T) {
	testCases := []struct {
		left      []string
		right     []string
		threshold float64
		// if ImplicitLink.Correlation == 0
		// the test will not assert the correlation to be equal
		expected []ImplicitLink
	}{
		{
			left:  []string{"a", "b", "c"},
			right: []string{"a", "b"},
			expected: []ImplicitLink{
				{Left: "a", Right: "a", Correlation: 1},
				{Left: "b", Right: "b", Correlation: 1},
			},
		},
		{
			left:  []string{"foo", "bar", "baz"},
			right: []string{"foob", "bar", "barr"},
			expected: []ImplicitLink{
				{Left: "bar", Right: "bar", Correlation: 1},
				{Left: "baz", Right: "barr"},
				{Left: "foo", Right: "foob"},
			},
		},
		{
			left:     []string{"foo", "bar", "baz"},
			right:    []string{},
			expected: nil,
		},
		{
			left:     []string{},
			right:    []string{},
			expected: nil,
		},
		{
			left:  []string{"foo", "bar", "baz"},
			right: []string{"baa"},
			expected: []ImplicitLink{
				{Left: "bar", Right: "baa"},
			},
		},
		{
			left:      []string{"Jim Abeler II", "Mary Kiffmeyer", "Jane Doe"},
			right:     []string{"Kiffmeyer, Mary", "Jim Abeler", "Mary Kiffmeyer", "Xavier Quinn"},
			threshold: 0.85,
			expected: []ImplicitLink{
				{Left: "Jim Abeler II", Right: "Jim Abeler"},
				{Left: "Mary Kiffmeyer", Right: "Mary Kiffmeyer", Correlation: 1},
			},
		},
	}

	for _, test := range testCases {
		links := CreateImplicitLinks(test.left, test.right, test.threshold)
		diff := cmp.Diff(
			test.expected,
			links,
			cmpopts.SortSlices(func(a, b ImplicitLink) bool {
				return a.Left < b.Left
			}),
			cmpopts.IgnoreFields(ImplicitLink{}, "Correlation"),
		)
		if diff != "" {
			t.Fatal(diff)
		}
		for _, link := range links {
			require.Greater(t, link.Correlation, 0.0)
		}
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"jane.doe", "john.smith", "janet.dobbs"}

	match, correlation, ok := BestMatch("Jane Doe", candidates, 0.9)
	require.True(t, ok)
	require.Equal(t, "jane.doe", match)
	require.Equal(t, 1.0, correlation)

	_, _, ok = BestMatch("Xavier Quinn", candidates, 0.9)
	require.False(t, ok)

	_, _, ok = BestMatch("Jane Doe", nil, 0)
	require.False(t, ok)
}
