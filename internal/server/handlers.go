package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/aigen"
	"github.com/claude/repcoach/internal/calendar"
	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// wire types for template ingestion. Sets arrive in either historical shape
// (object list or bare count) and are normalized here, at the boundary.
type wireExercise struct {
	ExerciseID string          `json:"exercise_id"`
	Name       string          `json:"name"`
	Notes      string          `json:"notes"`
	Sets       json.RawMessage `json:"sets"`
	VariantIDs []string        `json:"variant_ids"`
}

type wireDay struct {
	Name      string         `json:"name"`
	IsRest    bool           `json:"is_rest"`
	Exercises []wireExercise `json:"exercises"`
}

type wireTemplate struct {
	Name string             `json:"name"`
	Type models.RoutineType `json:"type"`
	Days []wireDay          `json:"days"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req wireTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" || len(req.Days) < 1 || len(req.Days) > 7 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "template needs a name and 1-7 days"})
		return
	}

	tpl := &models.RoutineTemplate{
		ID:      uuid.New(),
		CoachID: actorFromContext(r),
		Name:    req.Name,
		Type:    req.Type,
	}
	if tpl.Type == "" {
		tpl.Type = models.RoutineWeekly
	}
	for _, d := range req.Days {
		day := models.ScheduleDay{Name: d.Name, IsRest: d.IsRest, Exercises: []models.ExerciseSpec{}}
		for _, ex := range d.Exercises {
			sets, err := models.NormalizeSets(ex.Sets)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			day.Exercises = append(day.Exercises, models.ExerciseSpec{
				ExerciseID: ex.ExerciseID,
				Name:       ex.Name,
				Notes:      ex.Notes,
				Sets:       sets,
				VariantIDs: ex.VariantIDs,
			})
		}
		tpl.Days = append(tpl.Days, day)
	}

	if err := s.db.InsertTemplate(r.Context(), tpl); err != nil {
		s.log.Error("insert template", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.db.ListTemplates(r.Context(), actorFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}
	tpl, err := s.db.GetTemplate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleGenerateTemplate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "generator not configured"})
		return
	}
	var req struct {
		Goal        string `json:"goal"`
		DaysPerWeek int    `json:"days_per_week"`
		Experience  string `json:"experience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	draft, err := s.gen.GenerateDraft(r.Context(), aigen.DraftRequest{
		Goal:        req.Goal,
		DaysPerWeek: req.DaysPerWeek,
		Experience:  req.Experience,
	})
	if err != nil {
		s.log.Error("generate draft", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	draft.CoachID = actorFromContext(r)
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid template ID"})
		return
	}
	var req struct {
		AthleteID string `json:"athlete_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AthleteID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "athlete_id required"})
		return
	}

	actor := actorFromContext(r)
	caps, err := s.db.Resolve(r.Context(), actor)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	routine, err := s.assigner.Assign(r.Context(), actor, caps, templateID, req.AthleteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleActiveRoutine(w http.ResponseWriter, r *http.Request) {
	routine, err := s.db.GetActiveRoutine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	athleteID := chi.URLParam(r, "id")
	date := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	routine, err := s.db.GetActiveRoutine(r.Context(), athleteID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	hasLog, err := s.db.HasLogOnDate(r.Context(), athleteID, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, calendar.Classify(routine, date, hasLog))
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	suggestion, err := s.progress.Suggest(r.Context(), chi.URLParam(r, "id"), exercise)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// No history is a valid empty result, not an error.
	writeJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}

func (s *Server) handleSubmitLog(w http.ResponseWriter, r *http.Request) {
	var log models.TrainingLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if log.SessionID == uuid.Nil || log.AthleteID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id and athlete_id required"})
		return
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	inserted, err := s.db.SubmitTrainingLog(r.Context(), &log)
	if err != nil {
		s.log.Error("submit log", "session", log.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inserted": inserted, "session_id": log.SessionID})
}

func (s *Server) handleQueryLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.db.QueryTrainingLogs(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	summary, err := s.db.GetVolumeSummary(r.Context(), chi.URLParam(r, "id"), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
