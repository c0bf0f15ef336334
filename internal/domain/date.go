package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD and DD-MM-YYYY, with either '-' or '/' as the
// separator, and returns the calendar day at midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) == 3 && len(parts[0]) == 2 {
		s = parts[2] + "-" + parts[1] + "-" + parts[0]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD or DD-MM-YYYY, got " + strings.TrimSpace(raw)}
	}
	return d, nil
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
