package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDocumentNumber(t *testing.T) {
	cases := []struct {
		prefix string
		year   int
		seq    int64
		want   string
	}{
		{"DEV", 2026, 1, "DEV-2026-0001"},
		{"DEV", 2026, 42, "DEV-2026-0042"},
		{"FAC", 2026, 999, "FAC-2026-0999"},
		{"FAC", 2027, 1, "FAC-2027-0001"},
		{"DEV", 2026, 10000, "DEV-2026-10000"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatDocumentNumber(tc.prefix, tc.year, tc.seq))
	}
}
