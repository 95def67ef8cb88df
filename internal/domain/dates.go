package domain

import (
	"strings"
	"time"
)

const (
	// DateLayout is the on-disk form of a date of birth.
	DateLayout = "2006-01-02"
	// TimestampLayout is the form of QuizResult.Date.
	TimestampLayout = "2006-01-02 15:04:05"
)

var dateLayouts = []string{DateLayout, TimestampLayout, time.RFC3339, "2006/01/02"}

// ParseDate accepts YYYY-MM-DD and a few close variants.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders a date of birth.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTimestamp renders an attempt timestamp in local time.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}
