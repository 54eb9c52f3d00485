package domain

import "time"

// Schedule dates are calendar dates, not instants. They are represented as
// time.Time values normalized to midnight UTC so they are comparable with
// Equal/Before/After and usable as map keys.

const dateLayout = "2006-01-02"

// DateOf normalizes t to midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
