package calendar

import (
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

func weekRoutine(start time.Time) *models.AssignedRoutine {
	schedule := make([]models.ScheduleDay, 7)
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for i := range schedule {
		schedule[i] = models.ScheduleDay{Name: names[i], IsRest: true, Exercises: []models.ExerciseSpec{}}
	}
	// Train Monday, Wednesday, Friday.
	for _, i := range []int{0, 2, 4} {
		schedule[i].IsRest = false
		schedule[i].Exercises = []models.ExerciseSpec{
			{ExerciseID: "squat", Name: "Squat"},
			{ExerciseID: "press", Name: "Press"},
		}
	}
	return &models.AssignedRoutine{
		ID:        uuid.New(),
		AthleteID: "athlete-1",
		Active:    true,
		StartDate: start,
		Schedule:  schedule,
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2026-09-07 is a Monday.
	for i := 0; i < 7; i++ {
		date := time.Date(2026, 9, 7+i, 0, 0, 0, 0, time.UTC)
		if got := WeekdayIndex(date); got != i {
			t.Errorf("WeekdayIndex(%s) = %d, want %d", date.Weekday(), got, i)
		}
	}
}

func TestClassify(t *testing.T) {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // Monday
	routine := weekRoutine(start)

	tests := []struct {
		name       string
		routine    *models.AssignedRoutine
		date       time.Time
		hasLog     bool
		wantStatus Status
		wantCount  int
	}{
		{
			name:       "no routine at all",
			routine:    nil,
			date:       start,
			wantStatus: StatusNoPlan,
		},
		{
			name:       "before the start date",
			routine:    routine,
			date:       start.AddDate(0, 0, -1),
			wantStatus: StatusNoPlan,
		},
		{
			name:       "training monday",
			routine:    routine,
			date:       start,
			wantStatus: StatusTraining,
			wantCount:  2,
		},
		{
			name:       "rest tuesday",
			routine:    routine,
			date:       start.AddDate(0, 0, 1),
			wantStatus: StatusRest,
		},
		{
			name:       "training friday a week later",
			routine:    routine,
			date:       start.AddDate(0, 0, 11),
			wantStatus: StatusTraining,
			wantCount:  2,
		},
		{
			name:       "extra session on a rest day",
			routine:    routine,
			date:       start.AddDate(0, 0, 5),
			hasLog:     true,
			wantStatus: StatusRest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.routine, tt.date, tt.hasLog)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.ExerciseCount != tt.wantCount {
				t.Errorf("exercise count = %d, want %d", got.ExerciseCount, tt.wantCount)
			}
			if got.Recorded != tt.hasLog {
				t.Errorf("recorded = %v, want %v", got.Recorded, tt.hasLog)
			}
		})
	}
}

// TestClassifyDailyAssignment verifies that a single-slot assignment only
// answers for its one weekday; every other day has no plan.
func TestClassifyDailyAssignment(t *testing.T) {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // Monday
	routine := weekRoutine(start)
	routine.Schedule = routine.Schedule[:1]

	if got := Classify(routine, start, false); got.Status != StatusTraining {
		t.Errorf("monday status = %s, want training", got.Status)
	}
	if got := Classify(routine, start.AddDate(0, 0, 1), false); got.Status != StatusNoPlan {
		t.Errorf("tuesday status = %s, want no_plan", got.Status)
	}
}
