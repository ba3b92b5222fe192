package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

type fakeSource struct {
	sets []models.LoggedSet
	err  error

	gotExercise string
	gotLimit    int
}

func (f *fakeSource) RecentSets(ctx context.Context, athleteID, exerciseID string, limit int) ([]models.LoggedSet, error) {
	f.gotExercise = exerciseID
	f.gotLimit = limit
	return f.sets, f.err
}

func ptr(v float64) *float64 { return &v }

func set(session uuid.UUID, weight float64, reps int, rpe *float64) models.LoggedSet {
	return models.LoggedSet{
		ID:          uuid.New(),
		SessionID:   session,
		AthleteID:   "athlete-1",
		ExerciseID:  "bench-press",
		Weight:      weight,
		Reps:        reps,
		RPE:         rpe,
		PerformedAt: time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC),
	}
}

func TestSuggest(t *testing.T) {
	session := uuid.New()

	tests := []struct {
		name       string
		sets       []models.LoggedSet
		wantWeight float64
		wantReason string
	}{
		{
			name:       "moderate rpe maintains",
			sets:       []models.LoggedSet{set(session, 80, 5, ptr(6))},
			wantWeight: 80,
			wantReason: "maintain",
		},
		{
			name:       "low rpe increases by one increment",
			sets:       []models.LoggedSet{set(session, 80, 5, ptr(5))},
			wantWeight: 82.5,
			wantReason: "increase",
		},
		{
			name:       "rpe nine still maintains",
			sets:       []models.LoggedSet{set(session, 80, 5, ptr(9))},
			wantWeight: 80,
			wantReason: "maintain",
		},
		{
			name:       "maximal rpe consolidates",
			sets:       []models.LoggedSet{set(session, 80, 5, ptr(10))},
			wantWeight: 80,
			wantReason: "consolidate",
		},
		{
			name:       "missing rpe asks for it",
			sets:       []models.LoggedSet{set(session, 80, 5, nil)},
			wantWeight: 80,
			wantReason: "log_rpe",
		},
		{
			name:       "bodyweight work",
			sets:       []models.LoggedSet{set(session, 0, 12, ptr(7))},
			wantWeight: 0,
			wantReason: "add_load",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&fakeSource{sets: tt.sets})
			got, err := e.Suggest(context.Background(), "athlete-1", "bench-press")
			if err != nil {
				t.Fatalf("Suggest: %v", err)
			}
			if got == nil {
				t.Fatal("Suggest returned nil with history present")
			}
			if got.SuggestedWeight != tt.wantWeight {
				t.Errorf("weight = %v, want %v", got.SuggestedWeight, tt.wantWeight)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestSuggestNoHistory(t *testing.T) {
	e := New(&fakeSource{})
	got, err := e.Suggest(context.Background(), "athlete-1", "bench-press")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got != nil {
		t.Errorf("Suggest = %+v, want nil for no history", got)
	}
}

func TestSuggestSourceError(t *testing.T) {
	wantErr := errors.New("db down")
	e := New(&fakeSource{err: wantErr})
	if _, err := e.Suggest(context.Background(), "athlete-1", "bench-press"); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want wrapped %v", err, wantErr)
	}
}

// TestSuggestTopSet verifies top-set selection inside the newest session:
// heaviest weight wins, ties break toward higher reps, and older sessions are
// ignored even when they were heavier.
func TestSuggestTopSet(t *testing.T) {
	newest := uuid.New()
	older := uuid.New()

	src := &fakeSource{sets: []models.LoggedSet{
		set(newest, 80, 5, ptr(6)),
		set(newest, 85, 3, ptr(8)),
		set(newest, 85, 5, ptr(9)),
		set(older, 100, 1, ptr(10)),
	}}
	e := New(src)
	got, err := e.Suggest(context.Background(), "athlete-1", "bench-press")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got.LastWeight != 85 || got.LastReps != 5 {
		t.Errorf("top set = %vx%d, want 85x5", got.LastWeight, got.LastReps)
	}
	if got.Reason != "maintain" {
		t.Errorf("reason = %q, want maintain (from the 85x5@9 top set)", got.Reason)
	}
	if src.gotLimit != historyWindow {
		t.Errorf("history limit = %d, want %d", src.gotLimit, historyWindow)
	}
	if src.gotExercise != "bench-press" {
		t.Errorf("exercise queried = %q", src.gotExercise)
	}
}
