package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoutineType distinguishes single-day templates from weekly ones.
type RoutineType string

const (
	RoutineDaily  RoutineType = "daily"
	RoutineWeekly RoutineType = "weekly"
)

// SetType tags the intent of a planned set.
type SetType string

const (
	SetWarmup  SetType = "warmup"
	SetWorking SetType = "working"
	SetFailure SetType = "failure"
	SetDrop    SetType = "drop"
)

// SetSpec is one planned set within an exercise.
type SetSpec struct {
	Type        SetType `json:"type"`
	TargetReps  string  `json:"target_reps"` // numeric or range, e.g. "8" or "8-12"
	TargetRPE   float64 `json:"target_rpe,omitempty"`
	RestSeconds int     `json:"rest_seconds,omitempty"`
}

// ExerciseSpec is one planned exercise within a schedule day.
type ExerciseSpec struct {
	ExerciseID string    `json:"exercise_id"`
	Name       string    `json:"name"`
	Notes      string    `json:"notes,omitempty"`
	Sets       []SetSpec `json:"sets"`
	VariantIDs []string  `json:"variant_ids,omitempty"`
}

// RestSecondsOrDefault returns the configured rest for the exercise's first
// set that declares one, falling back to 90 seconds.
func (e ExerciseSpec) RestSecondsOrDefault() int {
	for _, s := range e.Sets {
		if s.RestSeconds > 0 {
			return s.RestSeconds
		}
	}
	return 90
}

// ScheduleDay is one day of a routine: either a rest day or an ordered
// exercise list.
type ScheduleDay struct {
	Name      string         `json:"name"`
	IsRest    bool           `json:"is_rest"`
	Exercises []ExerciseSpec `json:"exercises"`
}

// RoutineTemplate is a coach-authored, reusable routine definition.
// Templates are immutable once referenced by an assignment; assignments copy
// the days rather than pointing back.
type RoutineTemplate struct {
	ID      uuid.UUID     `json:"id"`
	CoachID string        `json:"coach_id"`
	Name    string        `json:"name"`
	Type    RoutineType   `json:"type"`
	Days    []ScheduleDay `json:"days"`
}

// AssignedRoutine is an athlete-specific copy of a template. Schedule is
// always 7 entries (Monday first); at most one AssignedRoutine is active per
// athlete at any time.
type AssignedRoutine struct {
	ID         uuid.UUID     `json:"id"`
	AthleteID  string        `json:"athlete_id"`
	TemplateID uuid.UUID     `json:"template_id"`
	Name       string        `json:"name"`
	Active     bool          `json:"active"`
	StartDate  time.Time     `json:"start_date"` // always a Monday, local midnight
	Schedule   []ScheduleDay `json:"schedule"`
}

// rawSetSpec accepts the two historical shapes of planned-set data: a full
// object list, or a bare count of working sets.
type rawSetSpec struct {
	specs []SetSpec
	count int
}

func (r *rawSetSpec) UnmarshalJSON(data []byte) error {
	var specs []SetSpec
	if err := json.Unmarshal(data, &specs); err == nil {
		r.specs = specs
		return nil
	}
	var count int
	if err := json.Unmarshal(data, &count); err == nil {
		r.count = count
		return nil
	}
	return fmt.Errorf("sets must be a list or a count")
}

// NormalizeSets converts a raw "sets" JSON value (object list or plain count)
// into a tagged SetSpec list. Shape detection happens only here, at the
// ingestion boundary; everything past this point works with []SetSpec.
func NormalizeSets(data json.RawMessage) ([]SetSpec, error) {
	var raw rawSetSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("normalizing sets: %w", err)
	}
	if raw.specs != nil {
		out := make([]SetSpec, len(raw.specs))
		for i, s := range raw.specs {
			if s.Type == "" {
				s.Type = SetWorking
			}
			out[i] = s
		}
		return out, nil
	}
	if raw.count < 0 {
		return nil, fmt.Errorf("normalizing sets: negative count %d", raw.count)
	}
	out := make([]SetSpec, raw.count)
	for i := range out {
		out[i] = SetSpec{Type: SetWorking}
	}
	return out, nil
}
