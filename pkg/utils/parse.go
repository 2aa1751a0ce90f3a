package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	apperrors "weekly-etf-dashboard/internal/errors"
)

// ISODate is the canonical date layout used across the dashboard.
const ISODate = "2006-01-02"

// Date layouts seen on issuer sites, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

var monthDayYearRe = regexp.MustCompile(`([A-Za-z]{3,9})\s+(\d{1,2}),\s*(\d{4})`)

// ParseDecimal parses a dollar-ish decimal string ("$0.245", "1,234.5").
// The returned error is a ParseError; callers that only need
// present/absent semantics can use the null.Float directly.
func ParseDecimal(field, s string) (null.Float, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return null.Float{}, apperrors.NewParseError(field, s, nil)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return null.Float{}, apperrors.NewParseError(field, s, err)
	}
	return null.FloatFrom(v), nil
}

// ParseDateISO parses a date string in any of the layouts issuer sites
// use and returns it normalized to YYYY-MM-DD. A last-resort regex
// extracts "Month dd, yyyy" fragments embedded in longer cell text.
func ParseDateISO(field, s string) (null.String, error) {
	s = NormSpace(s)
	if s == "" {
		return null.String{}, apperrors.NewParseError(field, s, nil)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// time.Parse maps 2-digit years into 1969-2068; anything
			// before 1950 is a mis-parsed short year.
			if t.Year() < 1950 {
				t = t.AddDate(2000, 0, 0)
			}
			return null.StringFrom(t.Format(ISODate)), nil
		}
	}
	if m := monthDayYearRe.FindStringSubmatch(s); m != nil {
		frag := m[1] + " " + m[2] + ", " + m[3]
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(layout, frag); err == nil {
				return null.StringFrom(t.Format(ISODate)), nil
			}
		}
	}
	return null.String{}, apperrors.NewParseError(field, s, nil)
}

// ParseDay parses a canonical YYYY-MM-DD string into a UTC midnight
// time. Used by the comparison engine for day arithmetic.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, apperrors.NewParseError("date", s, err)
	}
	return t.UTC(), nil
}

// DaysBetween returns a-b in whole days. Both times are truncated to
// their calendar day first.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ad.Sub(bd).Hours() / 24)
}
