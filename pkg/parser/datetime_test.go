package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestParseDateTimeLayouts(t *testing.T) {
	loc := berlin(t)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"13.10.2025 16:31:40", time.Date(2025, 10, 13, 16, 31, 40, 0, loc)},
		{"13.10.2025", time.Date(2025, 10, 13, 0, 0, 0, 0, loc)},
		{"13/10/2025", time.Date(2025, 10, 13, 0, 0, 0, 0, loc)},
		{"2025-10-13", time.Date(2025, 10, 13, 0, 0, 0, 0, loc)},
		{"2025-10-13 14:05:00", time.Date(2025, 10, 13, 14, 5, 0, 0, loc)},
		{"1.3.2025", time.Date(2025, 3, 1, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		got, ok := ParseDateTime(tc.in, loc)
		require.True(t, ok, "expected %q to parse", tc.in)
		assert.True(t, got.Equal(tc.want), "input %q: got %v want %v", tc.in, got, tc.want)
	}
}

func TestParseDateTimeKeepsExplicitZone(t *testing.T) {
	loc := berlin(t)
	got, ok := ParseDateTime("2025-10-13T14:30:00Z", loc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 10, 13, 14, 30, 0, 0, time.UTC)))
}

func TestParseDateTimeSpreadsheetSerial(t *testing.T) {
	loc := berlin(t)

	got, ok := ParseDateTime("45658", loc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, loc)), "got %v", got)

	// Fractional part is the time of day.
	got, ok = ParseDateTime("45658.5", loc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2025, 1, 1, 12, 0, 0, 0, loc)), "got %v", got)
}

func TestParseDateTimeFirstMatchWins(t *testing.T) {
	loc := berlin(t)
	// Day-first beats month-first for slash dates.
	got, ok := ParseDateTime("02/03/2025", loc)
	require.True(t, ok)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2, got.Day())
}

func TestParseDateTimeAbsent(t *testing.T) {
	loc := berlin(t)
	for _, in := range []string{"", "   ", "hello", "??", "-5"} {
		_, ok := ParseDateTime(in, loc)
		assert.False(t, ok, "expected %q to be absent", in)
	}
}

func TestParseDateTimeWholeSecondPrecision(t *testing.T) {
	loc := berlin(t)
	got, ok := ParseDateTime("45658.25", loc)
	require.True(t, ok)
	assert.Zero(t, got.Nanosecond())
}
