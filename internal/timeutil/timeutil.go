// Package timeutil normalizes the time and date representations found in
// externally sourced rows. Values arrive as already-formatted strings and may
// be full timestamps, bare clocks or garbage; nothing here returns an error.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultClock is the fallback for unparseable time-of-day values.
	DefaultClock = "09:00"

	// SlotMinutes is the grid granularity used everywhere in the engine.
	SlotMinutes = 30
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeClock canonicalizes a time-of-day representation to zero-padded
// 24-hour "HH:MM". Accepts full timestamps, "H:MM"/"HH:MM" (with optional
// seconds) and falls back to DefaultClock when nothing matches.
func NormalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultClock
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) >= 2 {
		hour, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
		minute, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errH == nil && errM == nil && hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	return DefaultClock
}

// NormalizeDate canonicalizes a date representation to "YYYY-MM-DD".
// Accepts "YYYY-MM-DD", "DD/MM/YYYY" and ISO timestamps. Unparseable input
// is returned unchanged rather than failing.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format("2006-01-02")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return s
}

// MinuteOfDay converts a clock value to minutes since midnight. The value is
// normalized first, so malformed input degrades to the default window start.
func MinuteOfDay(clock string) int {
	c := NormalizeClock(clock)
	hour, _ := strconv.Atoi(c[:2])
	minute, _ := strconv.Atoi(c[3:])
	return hour*60 + minute
}

// FormatMinute renders minutes since midnight as "HH:MM".
func FormatMinute(m int) string {
	if m < 0 {
		m = 0
	}
	m %= 24 * 60
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes returns clock shifted forward by mins, as "HH:MM".
func AddMinutes(clock string, mins int) string {
	return FormatMinute(MinuteOfDay(clock) + mins)
}

// SlotFloor returns the 30-minute slot boundary containing t, as "HH:MM".
func SlotFloor(t time.Time) string {
	minute := t.Hour()*60 + t.Minute()
	return FormatMinute(minute - minute%SlotMinutes)
}

// Today formats t's calendar date as "YYYY-MM-DD".
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}

// Weekday returns the weekday (Sunday = 0) of a "YYYY-MM-DD" date, or -1 when
// the date does not parse.
func Weekday(date string) int {
	t, err := time.Parse("2006-01-02", NormalizeDate(date))
	if err != nil {
		return -1
	}
	return int(t.Weekday())
}
