package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// Finalize closes the session: qualifying sets (nonzero weight or reps) are
// grouped by the executed exercise id into one TrainingLog, which is
// submitted to the record store. Whatever happens on the wire, local session
// state is cleared — a submit failure queues the payload into the offline
// retry buffer instead of surfacing, because losing a completed workout is
// worse than delayed sync.
func (s *Session) Finalize(ctx context.Context, sessionRPE *float64, notes string) (*models.TrainingLog, error) {
	if !s.active() {
		return nil, domain.Validationf("session is %s", s.Status)
	}

	log := s.buildLog(sessionRPE, notes)

	if err := s.finalizer.Submit(ctx, log); err != nil {
		s.log.Warn("finalize submit failed, queueing for retry",
			"session", s.SessionID, "error", err)
		payload, merr := json.Marshal(log)
		if merr != nil {
			return nil, merr
		}
		if qerr := s.queue.Enqueue(s.SessionID.String(), payload); qerr != nil {
			// Both the submit and the queue failed: keep local state so the
			// workout is not lost, and surface the failure.
			return nil, qerr
		}
	}

	s.Status = StateCompleted
	if err := s.store.Remove(stateKey(s.RoutineID, s.DayIndex)); err != nil {
		s.log.Warn("removing finalized session state", "error", err)
	}
	return log, nil
}

// buildLog assembles the TrainingLog from the current logged values.
func (s *Session) buildLog(sessionRPE *float64, notes string) *models.TrainingLog {
	now := time.Now()
	log := &models.TrainingLog{
		ID:          uuid.New(),
		SessionID:   s.SessionID,
		AthleteID:   s.AthleteID,
		Date:        now,
		DurationSec: s.ElapsedSec,
		SessionRPE:  sessionRPE,
		Notes:       notes,
		Status:      "completed",
	}

	// Group qualifying sets by executed exercise id, preserving slot order.
	byExercise := map[string]*models.LoggedExercise{}
	var order []string
	for i, exLog := range s.Logs {
		for _, set := range exLog.Sets {
			if set.Weight == 0 && set.Reps == 0 {
				continue
			}
			grp, ok := byExercise[exLog.ExerciseIDUsed]
			if !ok {
				grp = &models.LoggedExercise{
					ExerciseID: exLog.ExerciseIDUsed,
					Name:       s.Exercises[i].Name,
				}
				byExercise[exLog.ExerciseIDUsed] = grp
				order = append(order, exLog.ExerciseIDUsed)
			}
			grp.Sets = append(grp.Sets, models.LoggedSet{
				ID:          uuid.New(),
				SessionID:   s.SessionID,
				AthleteID:   s.AthleteID,
				ExerciseID:  exLog.ExerciseIDUsed,
				Weight:      set.Weight,
				Reps:        set.Reps,
				RPE:         set.RPE,
				PerformedAt: now,
			})
		}
	}
	for _, id := range order {
		log.Exercises = append(log.Exercises, *byExercise[id])
	}
	return log
}
