package timeutil

import (
	"testing"
	"time"
)

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already canonical", input: "14:30", expected: "14:30"},
		{name: "single digit hour", input: "9:05", expected: "09:05"},
		{name: "with seconds", input: "08:15:00", expected: "08:15"},
		{name: "rfc3339 timestamp", input: "2025-03-10T14:30:00Z", expected: "14:30"},
		{name: "sql timestamp", input: "2025-03-10 18:00:00", expected: "18:00"},
		{name: "surrounding spaces", input: "  10:00  ", expected: "10:00"},
		{name: "empty falls back", input: "", expected: DefaultClock},
		{name: "garbage falls back", input: "soon-ish", expected: DefaultClock},
		{name: "out of range hour", input: "25:00", expected: DefaultClock},
		{name: "out of range minute", input: "10:75", expected: DefaultClock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeClock(tt.input); got != tt.expected {
				t.Errorf("NormalizeClock(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "iso date", input: "2025-03-10", expected: "2025-03-10"},
		{name: "brazilian date", input: "10/03/2025", expected: "2025-03-10"},
		{name: "iso timestamp", input: "2025-03-10T00:00:00Z", expected: "2025-03-10"},
		{name: "garbage stays as-is", input: "next tuesday", expected: "next tuesday"},
		{name: "empty stays empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.expected {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMinuteOfDay(t *testing.T) {
	if got := MinuteOfDay("10:30"); got != 630 {
		t.Errorf("expected 630, got %d", got)
	}
	if got := MinuteOfDay("00:00"); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	// Malformed input degrades to the default clock.
	if got := MinuteOfDay("bogus"); got != 540 {
		t.Errorf("expected 540, got %d", got)
	}
}

func TestFormatMinute(t *testing.T) {
	if got := FormatMinute(630); got != "10:30" {
		t.Errorf("expected 10:30, got %q", got)
	}
	if got := FormatMinute(0); got != "00:00" {
		t.Errorf("expected 00:00, got %q", got)
	}
	if got := FormatMinute(-15); got != "00:00" {
		t.Errorf("expected 00:00, got %q", got)
	}
}

func TestAddMinutes(t *testing.T) {
	if got := AddMinutes("10:00", 45); got != "10:45" {
		t.Errorf("expected 10:45, got %q", got)
	}
	if got := AddMinutes("23:45", 30); got != "00:15" {
		t.Errorf("expected 00:15, got %q", got)
	}
}

func TestSlotFloor(t *testing.T) {
	tests := []struct {
		clock    string
		expected string
	}{
		{"14:10", "14:00"},
		{"14:30", "14:30"},
		{"14:59", "14:30"},
		{"00:05", "00:00"},
	}

	for _, tt := range tests {
		parsed, err := time.Parse("15:04", tt.clock)
		if err != nil {
			t.Fatalf("bad test clock %q", tt.clock)
		}
		if got := SlotFloor(parsed); got != tt.expected {
			t.Errorf("SlotFloor(%s) = %q, want %q", tt.clock, got, tt.expected)
		}
	}
}

func TestWeekday(t *testing.T) {
	// 2025-03-10 is a Monday.
	if got := Weekday("2025-03-10"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := Weekday("10/03/2025"); got != 1 {
		t.Errorf("expected 1 via normalization, got %d", got)
	}
	if got := Weekday("not a date"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
