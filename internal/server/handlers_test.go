package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/domain"
)

// TestWriteDomainError verifies the error taxonomy maps onto the right HTTP
// statuses.
func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", domain.Validationf("bad input"), http.StatusBadRequest},
		{"unauthorized", domain.Unauthorizedf("not yours"), http.StatusForbidden},
		{"not found", domain.NotFoundf("no such template"), http.StatusNotFound},
		{"anything else", domain.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body is empty")
			}
		})
	}
}

// TestCreateTemplateValidation verifies malformed template payloads are
// rejected before any storage call.
func TestCreateTemplateValidation(t *testing.T) {
	s := &Server{}
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing name", `{"days":[{"name":"Day 1"}]}`},
		{"no days", `{"name":"Block A","days":[]}`},
		{"too many days", `{"name":"Block A","days":[{},{},{},{},{},{},{},{}]}`},
		{"bad sets shape", `{"name":"Block A","days":[{"name":"Day 1","exercises":[{"exercise_id":"squat","sets":"three"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/templates", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handleCreateTemplate(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestGenerateTemplateUnconfigured verifies the generate endpoint reports
// unavailable when no generator is configured.
func TestGenerateTemplateUnconfigured(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/templates/generate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.handleGenerateTemplate(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

// TestProgressionMissingExercise verifies the exercise query parameter is
// required.
func TestProgressionMissingExercise(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/athletes/a1/progression", nil)
	rec := httptest.NewRecorder()
	s.handleProgression(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSubmitLogValidation verifies session_id and athlete_id are required
// before any write.
func TestSubmitLogValidation(t *testing.T) {
	s := &Server{}
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing session id", `{"athlete_id":"a1"}`},
		{"missing athlete id", `{"session_id":"7f6c2f44-0a36-4f2e-9f0e-2f1f8a6d9b01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handleSubmitLog(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

// TestParseTimeRange covers the accepted query formats and the 7-day default.
func TestParseTimeRange(t *testing.T) {
	t.Run("default last 7 days", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d := end.Sub(start); d != 7*24*time.Hour {
			t.Errorf("range = %s, want 168h", d)
		}
	})

	t.Run("date-only range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=2026-08-01&end=2026-08-31", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if start.Format("2006-01-02") != "2026-08-01" {
			t.Errorf("start = %s", start)
		}
		// Date-only end is extended to the end of the day.
		if !end.After(time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)) {
			t.Errorf("end = %s, want end of Aug 31", end)
		}
	})

	t.Run("rfc3339 range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=2026-08-01T06:00:00Z&end=2026-08-02T06:00:00Z", nil)
		start, end, err := parseTimeRange(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if end.Sub(start) != 24*time.Hour {
			t.Errorf("range = %s, want 24h", end.Sub(start))
		}
	})

	t.Run("garbage start", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start=yesterday", nil)
		if _, _, err := parseTimeRange(req); err == nil {
			t.Error("expected error for unparseable start")
		}
	})
}
