package domain

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. ISO first, then the
// day/month/year numeric and textual forms contracts commonly carry.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a calendar date in ISO or day/month/year form.
// The boolean is false for empty or unparseable input, which callers
// must treat identically to an absent date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date as ISO YYYY-MM-DD for the API boundary.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
