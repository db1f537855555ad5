package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount resolves a locale-ambiguous monetary string into a signed
// decimal. The second return value is false when the string has no parseable
// numeric content; that is an absent value, not an error.
//
// When both "." and "," appear, whichever comes last is the decimal point and
// the other is a thousands separator. A lone comma is a decimal point when at
// most two digits follow it, otherwise a thousands separator. This resolves
// "1.234,56" vs "1,234.56" to the same value.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(raw, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}

	// Drop a trailing currency token ("123,45 EUR", "12.00 Kč").
	fields := strings.Fields(s)
	if len(fields) > 1 && !strings.ContainsAny(fields[len(fields)-1], "0123456789") {
		fields = fields[:len(fields)-1]
	}
	s = strings.Join(fields, "")

	s = resolveSeparators(s)

	cleaned := keepNumeric(s)
	if cleaned == "" || cleaned == "-" || cleaned == "." || cleaned == "-." {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

func resolveSeparators(s string) string {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot >= 0:
		// Multiple dots can only be thousands separators.
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// keepNumeric strips everything except digits, one leading minus sign and a
// single decimal point.
func keepNumeric(s string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
