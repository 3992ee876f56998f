package reminder

import (
	"testing"
	"time"
)

func TestWithinQuietHoursNonWrapping(t *testing.T) {
	tests := []struct {
		name             string
		tm, start, end   string
		want             bool
	}{
		{"before window", "08:59", "09:00", "17:00", false},
		{"at start", "09:00", "09:00", "17:00", true},
		{"inside", "12:30", "09:00", "17:00", true},
		{"at end is outside", "17:00", "09:00", "17:00", false},
		{"after window", "20:00", "09:00", "17:00", false},
		{"empty window", "10:00", "10:00", "10:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinQuietHours(tt.tm, tt.start, tt.end); got != tt.want {
				t.Errorf("WithinQuietHours(%q, %q, %q) = %v, want %v", tt.tm, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestWithinQuietHoursWrapping(t *testing.T) {
	tests := []struct {
		name           string
		tm, start, end string
		want           bool
	}{
		{"late evening inside", "23:30", "22:00", "07:00", true},
		{"midnight inside", "00:00", "22:00", "07:00", true},
		{"early morning inside", "06:59", "22:00", "07:00", true},
		{"at end is outside", "07:00", "22:00", "07:00", false},
		{"midday outside", "12:00", "22:00", "07:00", false},
		{"at start", "22:00", "22:00", "07:00", true},
		{"just before start", "21:59", "22:00", "07:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinQuietHours(tt.tm, tt.start, tt.end); got != tt.want {
				t.Errorf("WithinQuietHours(%q, %q, %q) = %v, want %v", tt.tm, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestWithinQuietHoursBadInput(t *testing.T) {
	bad := []struct {
		tm, start, end string
	}{
		{"25:00", "22:00", "07:00"},
		{"12:00", "9:00", "17:00"},
		{"noon", "09:00", "17:00"},
		{"12:60", "09:00", "17:00"},
		{"", "22:00", "07:00"},
	}
	for _, tt := range bad {
		if WithinQuietHours(tt.tm, tt.start, tt.end) {
			t.Errorf("WithinQuietHours(%q, %q, %q) = true, want false for bad input", tt.tm, tt.start, tt.end)
		}
	}
}

func TestClock(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	at := time.Date(2026, 3, 10, 23, 5, 0, 0, loc)
	if got := Clock(at); got != "23:05" {
		t.Errorf("Clock = %q, want 23:05", got)
	}
}
