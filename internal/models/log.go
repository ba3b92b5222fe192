package models

import (
	"time"

	"github.com/google/uuid"
)

// LoggedSet is one performed set, append-only. ExerciseID is the exercise
// actually executed, which may differ from the planned slot when the athlete
// selected a variant.
type LoggedSet struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	AthleteID   string    `json:"athlete_id"`
	ExerciseID  string    `json:"exercise_id"`
	Weight      float64   `json:"weight"`
	Reps        int       `json:"reps"`
	RPE         *float64  `json:"rpe,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
}

// LoggedExercise groups the qualifying sets of one executed exercise inside a
// finalized TrainingLog.
type LoggedExercise struct {
	ExerciseID string      `json:"exercise_id"`
	Name       string      `json:"name"`
	Sets       []LoggedSet `json:"sets"`
}

// TrainingLog is a finalized session. Immutable once created; SessionID is
// the idempotency key for retried writes.
type TrainingLog struct {
	ID          uuid.UUID        `json:"id"`
	SessionID   uuid.UUID        `json:"session_id"`
	AthleteID   string           `json:"athlete_id"`
	Date        time.Time        `json:"date"`
	DurationSec int              `json:"duration_sec"`
	SessionRPE  *float64         `json:"session_rpe,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Status      string           `json:"status"` // always "completed"
	Exercises   []LoggedExercise `json:"exercises"`
}

// TotalSets counts the sets across all exercises.
func (l TrainingLog) TotalSets() int {
	n := 0
	for _, ex := range l.Exercises {
		n += len(ex.Sets)
	}
	return n
}

// TotalVolume is the sum of weight*reps across all sets.
func (l TrainingLog) TotalVolume() float64 {
	var v float64
	for _, ex := range l.Exercises {
		for _, s := range ex.Sets {
			v += s.Weight * float64(s.Reps)
		}
	}
	return v
}

// ProgressionSuggestion is a derived next-load recommendation. Never persisted.
type ProgressionSuggestion struct {
	ExerciseID      string     `json:"exercise_id"`
	SuggestedWeight float64    `json:"suggested_weight"`
	Reason          string     `json:"reason"`  // short category: increase, maintain, consolidate, log_rpe, add_load
	Message         string     `json:"message"` // human-readable explanation
	LastWeight      float64    `json:"last_weight"`
	LastReps        int        `json:"last_reps"`
	LastRPE         *float64   `json:"last_rpe,omitempty"`
	LastDate        *time.Time `json:"last_date,omitempty"`
}
