package aigen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/repcoach/internal/models"
)

func TestNewClientDisabled(t *testing.T) {
	if c := NewClient("", "key"); c != nil {
		t.Error("NewClient with empty base URL should return nil")
	}
}

func TestGenerateDraft(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Beginner 3-Day",
			"days": [
				{"name": "Day 1", "exercises": [{"exercise_id": "squat", "name": "Squat", "sets": []}]},
				{"name": "Day 2", "exercises": []},
				{"name": "Day 3", "exercises": []}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "gen-key")
	draft, err := c.GenerateDraft(context.Background(), DraftRequest{Goal: "strength", DaysPerWeek: 3})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if gotPath != "/v1/routine-drafts" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer gen-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if draft.Name != "Beginner 3-Day" {
		t.Errorf("name = %q", draft.Name)
	}
	if draft.Type != models.RoutineWeekly {
		t.Errorf("type = %q, want inferred weekly", draft.Type)
	}
	if len(draft.Days) != 3 {
		t.Errorf("days = %d, want 3", len(draft.Days))
	}
}

func TestGenerateDraftSingleDayInfersDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Quick Pump", "days": [{"name": "Day 1", "exercises": []}]}`))
	}))
	defer srv.Close()

	draft, err := NewClient(srv.URL, "").GenerateDraft(context.Background(), DraftRequest{})
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if draft.Type != models.RoutineDaily {
		t.Errorf("type = %q, want inferred daily", draft.Type)
	}
}

// TestGenerateDraftShapeChecks verifies only the draft's shape is validated:
// a missing name or an out-of-range day count is rejected.
func TestGenerateDraftShapeChecks(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no name", `{"days": [{"name": "Day 1"}]}`},
		{"no days", `{"name": "Empty"}`},
		{"eight days", `{"name": "Too Long", "days": [{},{},{},{},{},{},{},{}]}`},
		{"not json", `drop every set`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			if _, err := NewClient(srv.URL, "").GenerateDraft(context.Background(), DraftRequest{}); err == nil {
				t.Error("expected an error for a malformed draft")
			}
		})
	}
}

func TestGenerateDraftServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "").GenerateDraft(context.Background(), DraftRequest{}); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
