// Package calendar classifies schedule days for status rendering.
package calendar

import (
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Status classifies one queried date against an assigned routine.
type Status string

const (
	StatusNoPlan   Status = "no_plan"  // date precedes the routine's start
	StatusRest     Status = "rest"     // planned rest day
	StatusTraining Status = "training" // planned training day
)

// DayInfo is the classification of one calendar date.
type DayInfo struct {
	Date          time.Time `json:"date"`
	Status        Status    `json:"status"`
	ExerciseCount int       `json:"exercise_count,omitempty"`
	DayName       string    `json:"day_name,omitempty"`
	// Recorded is true when at least one finalized log exists on this date,
	// independent of the plan: a training day without a log is missed or
	// pending, a rest day with a log is an extra session.
	Recorded bool `json:"recorded"`
}

// WeekdayIndex maps a date to the routine's schedule slot, Monday=0..Sunday=6.
func WeekdayIndex(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// Classify determines the plan status of date under routine. hasLog reports
// whether a finalized TrainingLog exists for the athlete on that calendar
// date; it overlays the plan classification without changing it.
func Classify(routine *models.AssignedRoutine, date time.Time, hasLog bool) DayInfo {
	info := DayInfo{Date: date, Recorded: hasLog}

	if routine == nil || date.Before(routine.StartDate) {
		info.Status = StatusNoPlan
		return info
	}

	idx := WeekdayIndex(date)
	if idx >= len(routine.Schedule) {
		// Single-day (daily) assignments only describe one slot.
		info.Status = StatusNoPlan
		return info
	}

	day := routine.Schedule[idx]
	info.DayName = day.Name
	if day.IsRest {
		info.Status = StatusRest
		return info
	}
	info.Status = StatusTraining
	info.ExerciseCount = len(day.Exercises)
	return info
}
