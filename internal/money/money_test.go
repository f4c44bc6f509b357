package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, int64(0), RoundHalfUp(0))
	require.Equal(t, int64(1), RoundHalfUp(0.5))
	require.Equal(t, int64(1), RoundHalfUp(1.49))
	require.Equal(t, int64(2), RoundHalfUp(1.5))
	require.Equal(t, int64(-1), RoundHalfUp(-0.5))
	require.Equal(t, int64(-2), RoundHalfUp(-1.5))
}

func TestPercentOf(t *testing.T) {
	require.Equal(t, int64(30000), PercentOf(100000, 30))
	require.Equal(t, int64(0), PercentOf(100000, 0))
	require.Equal(t, int64(100000), PercentOf(100000, 100))
	// 33.33% of 10.00 = 3.33 (3.333 rounds down)
	require.Equal(t, int64(333), PercentOf(1000, 33.33))
	// 12.5% of 0.99 = 0.12375 -> 12 cents
	require.Equal(t, int64(12), PercentOf(99, 12.5))
}

func TestClampPercent(t *testing.T) {
	require.Equal(t, 0.0, ClampPercent(-5))
	require.Equal(t, 42.5, ClampPercent(42.5))
	require.Equal(t, 100.0, ClampPercent(250))
}

func TestParseCents(t *testing.T) {
	cases := map[string]int64{
		"0":       0,
		"10":      1000,
		"123.45":  12345,
		"123,45":  12345,
		"0.5":     50,
		"-12.34":  -1234,
		" 99.99 ": 9999,
	}
	for in, want := range cases {
		got, err := ParseCents(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "1.234", "1.2.3"} {
		_, err := ParseCents(in)
		require.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	require.Contains(t, Format(12345, "EUR"), "123,45")
	require.Contains(t, Format(-50, "EUR"), "-0,50")
}
