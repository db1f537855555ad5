package parser

import (
	"strconv"
	"strings"
	"time"
)

// Calendar-date layouts tried before the timestamp set. Day-first layouts
// come first: these are bank statements, not US exports.
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.06",
	"02/01/06",
}

var timestampLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2.1.2006 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02.01.06 15:04:05",
}

// ParseDateTime resolves heterogeneous date encodings into an instant.
// Layouts are tried in order and the first success wins; a purely numeric
// value is interpreted as a spreadsheet serial day count. Zone-less values
// are stamped with loc, and the result is truncated to whole seconds.
// The second return value is false when nothing matched.
func ParseDateTime(raw string, loc *time.Location) (time.Time, bool) {
	s := normalizeCell(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Truncate(time.Second), true
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Truncate(time.Second), true
		}
	}

	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && f > 0 {
		return serialDate(f, loc), true
	}
	return time.Time{}, false
}

// serialDate converts a spreadsheet serial day count (fractional part = time
// of day) into a time.Time. The epoch 1899-12-30 absorbs the fictitious
// 1900-02-29 that spreadsheet serials carry.
func serialDate(f float64, loc *time.Location) time.Time {
	days := int(f)
	frac := f - float64(days)
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, loc)
	t := base.AddDate(0, 0, days)
	t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	return t.Truncate(time.Second)
}
