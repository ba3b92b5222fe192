// Package progression derives a next-load recommendation from an athlete's
// recent set history. Pure read-then-compute; nothing here writes.
package progression

import (
	"context"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// historyWindow bounds how many recent sets are considered.
const historyWindow = 20

// weightIncrement is the smallest practical plate jump in kg.
const weightIncrement = 2.5

// SetSource supplies recent set records, ordered newest first.
type SetSource interface {
	RecentSets(ctx context.Context, athleteID, exerciseID string, limit int) ([]models.LoggedSet, error)
}

// Engine computes progression suggestions.
type Engine struct {
	source SetSource
}

// New creates an Engine over the given set source.
func New(source SetSource) *Engine {
	return &Engine{source: source}
}

// Suggest returns the recommended next load for the exercise, or nil when the
// athlete has no history for it. No history is a valid empty result, not an
// error.
func (e *Engine) Suggest(ctx context.Context, athleteID, exerciseID string) (*models.ProgressionSuggestion, error) {
	sets, err := e.source.RecentSets(ctx, athleteID, exerciseID, historyWindow)
	if err != nil {
		return nil, fmt.Errorf("loading set history: %w", err)
	}
	if len(sets) == 0 {
		return nil, nil
	}

	// Restrict to the most recent session: the first record is newest, so its
	// session id identifies the last time this exercise was trained.
	lastSession := sets[0].SessionID
	top := topSet(sets, lastSession)

	s := &models.ProgressionSuggestion{
		ExerciseID: exerciseID,
		LastWeight: top.Weight,
		LastReps:   top.Reps,
		LastRPE:    top.RPE,
	}
	if !top.PerformedAt.IsZero() {
		d := top.PerformedAt
		s.LastDate = &d
	}

	switch {
	case top.Weight == 0:
		// Bodyweight work: weight progression does not apply.
		s.SuggestedWeight = 0
		s.Reason = "add_load"
		s.Message = "bodyweight exercise: add reps or external load"
	case top.RPE == nil:
		s.SuggestedWeight = top.Weight
		s.Reason = "log_rpe"
		s.Message = "log RPE for better suggestions"
	case *top.RPE <= 5:
		s.SuggestedWeight = top.Weight + weightIncrement
		s.Reason = "increase"
		s.Message = "RPE low, increase load"
	case *top.RPE > 9:
		s.SuggestedWeight = top.Weight
		s.Reason = "consolidate"
		s.Message = "RPE high, consolidate at this weight"
	default:
		s.SuggestedWeight = top.Weight
		s.Reason = "maintain"
		s.Message = "good effort zone, add reps at this weight"
	}
	return s, nil
}

// topSet picks the heaviest set within the given session, ties broken by
// higher reps. Further ties keep the first (newest) record.
func topSet(sets []models.LoggedSet, session uuid.UUID) models.LoggedSet {
	var top models.LoggedSet
	found := false
	for _, s := range sets {
		if s.SessionID != session {
			continue
		}
		if !found || s.Weight > top.Weight || (s.Weight == top.Weight && s.Reps > top.Reps) {
			top = s
			found = true
		}
	}
	return top
}
