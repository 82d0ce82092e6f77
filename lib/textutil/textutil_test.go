package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "Jane Doe", expected: "janedoe"},
		{name: "O'Neil-Smith, Jr.", expected: "oneilsmithjr"},
		{name: "Ann  Lee", expected: "annlee"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.name), test.name)
	}
}

func TestLines(t *testing.T) {
	require.Equal(t,
		[]string{"PO Box 1", "Juneau, AK 99801"},
		Lines("  PO Box 1 \r\n\n Juneau,   AK 99801\n  "),
	)
	require.Nil(t, Lines(" \n \n"))
}

func TestAfter(t *testing.T) {
	value, ok := After(" Party: Republican", "Party:")
	require.True(t, ok)
	require.Equal(t, "Republican", value)

	_, ok = After("Phone: 555", "Party:")
	require.False(t, ok)
}

func TestTitle(t *testing.T) {
	require.Equal(t, "Po Box 200 Helena", Title("PO BOX 200  HELENA"))
	require.Equal(t, "Émile Roux", Title("ÉMILE ROUX"))
}
