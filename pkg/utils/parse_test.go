package utils

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"$0.245", 0.245, false},
		{"0.18", 0.18, false},
		{"1,234.5", 1234.5, false},
		{" $12.00 ", 12.0, false},
		{"", 0, true},
		{"n/a", 0, true},
		{"--", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDecimal("amount", tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDecimal(%q): expected error", tt.in)
			}
			if got.Valid {
				t.Errorf("ParseDecimal(%q): expected null on error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimal(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !got.Valid || got.Float64 != tt.want {
			t.Errorf("ParseDecimal(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-07-24", "2025-07-24"},
		{"7/24/2025", "2025-07-24"},
		{"7/24/25", "2025-07-24"},
		{"July 24, 2025", "2025-07-24"},
		{"Jul 24, 2025", "2025-07-24"},
		{"July 24 2025", "2025-07-24"},
		{"Ex-Date: July 24, 2025 (estimated)", "2025-07-24"},
	}
	for _, tt := range tests {
		got, err := ParseDateISO("date", tt.in)
		if err != nil {
			t.Errorf("ParseDateISO(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got.String != tt.want {
			t.Errorf("ParseDateISO(%q) = %q, want %q", tt.in, got.String, tt.want)
		}
	}

	for _, bad := range []string{"", "not a date", "2025-13-99"} {
		if got, err := ParseDateISO("date", bad); err == nil || got.Valid {
			t.Errorf("ParseDateISO(%q): expected null + error, got %v", bad, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 7, 28, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 7, 24, 0, 1, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 4 {
		t.Errorf("DaysBetween = %d, want 4", got)
	}
	if got := DaysBetween(b, a); got != -4 {
		t.Errorf("DaysBetween reversed = %d, want -4", got)
	}
}

func TestPctChange(t *testing.T) {
	if got := PctChange(null.FloatFrom(0.18), null.FloatFrom(0.20)); !got.Valid || RoundTo(got.Float64, 2) != -10.0 {
		t.Errorf("PctChange(0.18, 0.20) = %v, want -10.0", got)
	}
	if got := PctChange(null.FloatFrom(1), null.FloatFrom(0)); got.Valid {
		t.Errorf("PctChange with zero base must be null, got %v", got)
	}
	if got := PctChange(null.Float{}, null.FloatFrom(1)); got.Valid {
		t.Errorf("PctChange with null current must be null, got %v", got)
	}
	if got := PctChange(null.FloatFrom(1), null.Float{}); got.Valid {
		t.Errorf("PctChange with null base must be null, got %v", got)
	}
}

func TestNormSpace(t *testing.T) {
	if got := NormSpace("  a \t b\n c  "); got != "a b c" {
		t.Errorf("NormSpace = %q", got)
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(43.661025, 1); got != 43.7 {
		t.Errorf("RoundTo(43.661025, 1) = %v, want 43.7", got)
	}
	if got := RoundTo(-0.0171428571, 6); got != -0.017143 {
		t.Errorf("RoundTo slope = %v, want -0.017143", got)
	}
}
