package ir

import (
	"strings"
	"time"
)

// OpenEndedLabel is the textual marker for a validity window with no end.
// It matches PostgreSQL's timestamp 'infinity'.
const OpenEndedLabel = "infinity"

// OpenEnded is the sentinel instant that stands in for "never terminates".
// It sorts after every real instant, so ordinary comparisons treat an
// open-ended window as extending past any point of interest.
var OpenEnded = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// instantLayouts are tried in order. time.DateTime also accepts an optional
// fractional-second suffix when parsing.
var instantLayouts = []string{
	time.DateTime,
	"2006-01-02T15:04:05",
	time.DateOnly,
	time.RFC3339Nano,
}

// IsOpenEnded reports whether t is the open-ended sentinel.
func IsOpenEnded(t time.Time) bool {
	return t.Equal(OpenEnded)
}

// ParseInstant parses a date/time value. The OpenEndedLabel, compared
// case-insensitively, yields OpenEnded. Naive values are taken as UTC.
func ParseInstant(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if strings.EqualFold(trimmed, OpenEndedLabel) {
		return OpenEnded, nil
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ParseError{Input: s, Err: ErrBadInstant}
}

// MustParseInstant is like ParseInstant but panics on error.
// Use only in tests or with literal inputs.
func MustParseInstant(s string) time.Time {
	t, err := ParseInstant(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatInstant renders t as "2006-01-02 15:04:05", with microseconds when
// the instant has a sub-second part. The sentinel renders as openLabel; an
// empty openLabel renders the sentinel as a plain date.
func FormatInstant(t time.Time, openLabel string) string {
	if IsOpenEnded(t) && openLabel != "" {
		return openLabel
	}
	t = t.UTC()
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}
	return t.Format(time.DateTime)
}
