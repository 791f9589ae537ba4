// Package dateparse parses relative and absolute date strings, used for
// API key expiries.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse resolves a date input to a point in time, using the current time
// as the reference point.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Relative days: "+30d"
//   - Relative weeks: "+2w"
//   - Relative months: "+6m"
//   - Keywords: "tomorrow", "next-week", "next-month"
func Parse(input string) (time.Time, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom is Parse with an explicit reference time, for deterministic
// tests. Resolved dates land at end of day UTC so an expiry of "today"
// stays valid through the day it names.
func ParseFrom(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}

	if t, err := time.Parse("2006-01-02", input); err == nil {
		return endOfDay(t), nil
	}

	switch input {
	case "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	case "next-week":
		daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return endOfDay(now.AddDate(0, 0, daysUntilMonday)), nil
	case "next-month":
		year, month, _ := now.Date()
		return endOfDay(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)), nil
	}

	// Relative offsets: +Nd, +Nw, +Nm
	if strings.HasPrefix(input, "+") && len(input) >= 3 {
		unit := input[len(input)-1]
		n, err := strconv.Atoi(input[1 : len(input)-1])
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid relative date %q", input)
		}
		switch unit {
		case 'd':
			return endOfDay(now.AddDate(0, 0, n)), nil
		case 'w':
			return endOfDay(now.AddDate(0, 0, 7*n)), nil
		case 'm':
			return endOfDay(now.AddDate(0, n, 0)), nil
		}
		return time.Time{}, fmt.Errorf("invalid relative unit in %q (use d, w, or m)", input)
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", input)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}
