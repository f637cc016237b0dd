package extract

import (
	"testing"
	"time"
)

func TestParseDocDate(t *testing.T) {
	got, ok := ParseDocDate("Aug 27, 2026")
	if !ok {
		t.Fatal("date-only layout did not parse")
	}
	if got.Year() != 2026 || got.Month() != time.August || got.Day() != 27 {
		t.Errorf("parsed %v, want 2026-08-27", got)
	}

	got, ok = ParseDocDate("Aug 27, 2026, 3:15 PM")
	if !ok {
		t.Fatal("date-time layout did not parse")
	}
	if got.Hour() != 15 || got.Minute() != 15 {
		t.Errorf("parsed %v, want 15:15", got)
	}
}

func TestParseDocDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "  ", "not a date", "2026-08-27"} {
		if _, ok := ParseDocDate(s); ok {
			t.Errorf("ParseDocDate(%q) unexpectedly parsed", s)
		}
	}
}
