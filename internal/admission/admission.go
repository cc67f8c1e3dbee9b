// Package admission decides whether an item's activity window makes it
// currently relevant. The filter is conjunctive and conservative: an
// item needs both a recent effective start and an unexpired application
// deadline, and any missing or unparseable date rejects it. Sources that
// never populate an application deadline therefore never pass; that is a
// known sharp edge of the window model, not a bug in this package.
package admission

import (
	"strings"
	"time"

	"GrantRadar/internal/domain"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// Admit reports whether the item starts inside the trailing lookback
// window and its application deadline has not passed at ref.
func Admit(item domain.RawItem, lookbackDays int, ref time.Time) bool {
	effectiveStart := item.ApplyStart
	if strings.TrimSpace(effectiveStart) == "" {
		effectiveStart = item.PublishedAt
	}

	start, ok := ParseDate(effectiveStart)
	if !ok {
		return false
	}
	end, ok := ParseDate(item.ApplyEnd)
	if !ok {
		return false
	}

	refDay := truncateToDay(ref)
	cutoff := refDay.AddDate(0, 0, -lookbackDays)

	return !start.Before(cutoff) && !end.Before(refDay)
}

// ParseDate interprets the permissive date formats the sources emit:
// 8-digit YYYYMMDD, ISO datetimes (time-of-day and zone truncated),
// YYYY-MM-DD and YYYY/MM/DD. Comparison is on naive dates; zone suffixes
// are deliberately discarded for parser robustness across mixed inputs.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if len(raw) == 8 && isDigits(raw) {
		if t, err := time.Parse("20060102", raw); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	// ISO datetimes keep only the calendar date part.
	datePart := raw
	if i := strings.IndexAny(raw, "T "); i > 0 {
		datePart = raw[:i]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
