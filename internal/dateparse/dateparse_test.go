package dateparse

import (
	"testing"
	"time"
)

// Tuesday.
var ref = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestParseFromExact(t *testing.T) {
	got, err := ParseFrom("2026-04-01", ref)
	if err != nil {
		t.Fatalf("ParseFrom() error = %v", err)
	}
	want := time.Date(2026, 4, 1, 23, 59, 59, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFromRelative(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"+1d", time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)},
		{"+30d", time.Date(2026, 4, 9, 23, 59, 59, 0, time.UTC)},
		{"+2w", time.Date(2026, 3, 24, 23, 59, 59, 0, time.UTC)},
		{"+6m", time.Date(2026, 9, 10, 23, 59, 59, 0, time.UTC)},
		{"tomorrow", time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)},
		{"next-week", time.Date(2026, 3, 16, 23, 59, 59, 0, time.UTC)},
		{"next-month", time.Date(2026, 4, 1, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrom(tt.input, ref)
			if err != nil {
				t.Fatalf("ParseFrom(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseFrom(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFromInvalid(t *testing.T) {
	for _, input := range []string{"", "yesteryear", "+d", "+0d", "+5y", "03/10/2026"} {
		if _, err := ParseFrom(input, ref); err == nil {
			t.Errorf("ParseFrom(%q) should fail", input)
		}
	}
}
