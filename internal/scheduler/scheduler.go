// Package scheduler converts a coach-authored routine template into a
// Monday-first weekly calendar bound to one athlete.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/auth"
	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// placements maps a training-day count onto fixed weekday slots (0=Monday).
var placements = map[int][]int{
	1: {0},
	2: {0, 3},
	3: {0, 2, 4},
	4: {0, 1, 3, 4},
	5: {0, 1, 2, 3, 4},
	6: {0, 1, 2, 3, 4, 5},
	7: {0, 1, 2, 3, 4, 5, 6},
}

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Store is the slice of the record store the scheduler needs.
type Store interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.RoutineTemplate, error)
	// ReplaceActiveRoutine deactivates every active routine for the athlete
	// and inserts the new one as a single atomic batch.
	ReplaceActiveRoutine(ctx context.Context, routine *models.AssignedRoutine) error
}

// Assigner schedules templates onto athletes' calendars.
type Assigner struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates an Assigner. now may be nil, defaulting to time.Now.
func New(store Store, log *slog.Logger, now func() time.Time) *Assigner {
	if now == nil {
		now = time.Now
	}
	return &Assigner{store: store, log: log, now: now}
}

// Assign copies the template onto a 7-day calendar for the athlete,
// deactivating any previously active routine atomically. The caller must be
// the template's owning coach and hold the assign capability.
func (a *Assigner) Assign(ctx context.Context, actorID string, caps auth.Capabilities, templateID uuid.UUID, athleteID string) (*models.AssignedRoutine, error) {
	if !caps.CanAssignRoutines {
		return nil, domain.Unauthorizedf("actor %s cannot assign routines", actorID)
	}

	tpl, err := a.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if tpl.CoachID != actorID {
		return nil, domain.Unauthorizedf("template %s is not owned by %s", templateID, actorID)
	}

	schedule, err := BuildWeek(tpl)
	if err != nil {
		return nil, err
	}

	routine := &models.AssignedRoutine{
		ID:         uuid.New(),
		AthleteID:  athleteID,
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		Active:     true,
		StartDate:  NextMonday(a.now()),
		Schedule:   schedule,
	}

	if err := a.store.ReplaceActiveRoutine(ctx, routine); err != nil {
		return nil, fmt.Errorf("storing assignment: %w", err)
	}

	a.log.Info("routine assigned",
		"template", tpl.ID, "athlete", athleteID, "start", routine.StartDate.Format("2006-01-02"))
	return routine, nil
}

// BuildWeek maps the template's training days onto a Monday-first week using
// the fixed placement table. Weekly templates always come out 7 entries long;
// unmapped slots become rest days. Daily (single-day) templates keep their
// single day: weekday placement for those is the caller's contract, not
// scheduling logic.
func BuildWeek(tpl *models.RoutineTemplate) ([]models.ScheduleDay, error) {
	n := len(tpl.Days)
	if n < 1 || n > 7 {
		return nil, domain.Validationf("template has %d days, want 1-7", n)
	}

	if tpl.Type == models.RoutineDaily {
		if n != 1 {
			return nil, domain.Validationf("daily template has %d days, want 1", n)
		}
		day := tpl.Days[0]
		day.IsRest = false
		return []models.ScheduleDay{day}, nil
	}

	slots := placements[n]
	schedule := make([]models.ScheduleDay, 7)
	next := 0
	for i := range schedule {
		if next < len(slots) && slots[next] == i {
			day := tpl.Days[next]
			day.Name = weekdayNames[i]
			day.IsRest = false
			schedule[i] = day
			next++
			continue
		}
		schedule[i] = models.ScheduleDay{
			Name:      weekdayNames[i],
			IsRest:    true,
			Exercises: []models.ExerciseSpec{},
		}
	}
	return schedule, nil
}

// NextMonday returns the first Monday strictly after now, at local midnight.
// Assigning on a Monday therefore lands a full week out; assigning on a
// Sunday lands tomorrow.
func NextMonday(now time.Time) time.Time {
	// ISO weekday numbering, Monday=1..Sunday=7.
	wd := int(now.Weekday())
	if wd == 0 {
		wd = 7
	}
	days := 8 - wd
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, now.Location())
}
