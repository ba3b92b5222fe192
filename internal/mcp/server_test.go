package mcp

import (
	"context"
	"testing"
)

// TestAthleteIDFromContextDefault verifies the fallback athlete when no value
// is set in the context.
func TestAthleteIDFromContextDefault(t *testing.T) {
	if id := AthleteIDFromContext(context.Background()); id != "local" {
		t.Errorf("AthleteIDFromContext(empty) = %q, want %q", id, "local")
	}
}

// TestAthleteIDFromContextSet verifies the athlete ID is extracted from
// context after being set by WithAthleteID.
func TestAthleteIDFromContextSet(t *testing.T) {
	ctx := WithAthleteID(context.Background(), "athlete-42")
	if id := AthleteIDFromContext(ctx); id != "athlete-42" {
		t.Errorf("AthleteIDFromContext = %q, want %q", id, "athlete-42")
	}
}

// TestDefaultTimeRange verifies time range defaults (last 28 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to the last 28 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 671 || diff.Hours() > 673 { // ~672 hours = 28 days
		t.Errorf("default range = %.0f hours, want ~672", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 8 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-08-01", start)
	}
	if end.Year() != 2026 || end.Month() != 8 || end.Day() != 31 {
		t.Errorf("end = %v, want 2026-08-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	if _, _, err = defaultTimeRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}
