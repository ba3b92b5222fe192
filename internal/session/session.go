// Package session runs one workout as a resumable state machine on the
// athlete's device. Every state-changing operation persists the full session
// to a device-local durable store so a reload never loses in-progress data.
//
// The engine is single-threaded and cooperative: the caller's one-second
// clock drives elapsed time and the rest countdown via Tick.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/auth"
	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// State is the lifecycle phase of a session. Completed and Cancelled are
// terminal.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateResting    State = "resting"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// defaultRestSeconds applies when an exercise declares no rest.
const defaultRestSeconds = 90

// restExtension is the increment added by ExtendRest.
const restExtension = 30

// defaultNewExerciseSets is how many working sets an appended exercise gets.
const defaultNewExerciseSets = 3

// SetLog is the logged values for one planned set slot. Targets are retained
// from the plan for display.
type SetLog struct {
	Weight     float64  `json:"weight"`
	Reps       int      `json:"reps"`
	RPE        *float64 `json:"rpe,omitempty"`
	Completed  bool     `json:"completed"`
	TargetReps string   `json:"target_reps,omitempty"`
	TargetRPE  float64  `json:"target_rpe,omitempty"`
}

// ExerciseLog is the log structure for one exercise slot. ExerciseIDUsed
// tracks the executed exercise independently of the planned one, so variant
// substitutions are recorded accurately.
type ExerciseLog struct {
	ExerciseIDUsed string   `json:"exercise_id_used"`
	Sets           []SetLog `json:"sets"`
}

// LocalStore is the device-local durable store the session persists into.
type LocalStore interface {
	Get(key string) ([]byte, error)
	Set(key string, blob []byte) error
	Remove(key string) error
}

// RetryQueue buffers finalize payloads that could not reach the server. The
// session ID keys each entry so retries dedupe.
type RetryQueue interface {
	Enqueue(sessionID string, payload []byte) error
}

// Finalizer submits a finalized TrainingLog to the record store.
type Finalizer interface {
	Submit(ctx context.Context, log *models.TrainingLog) error
}

// Session is one in-flight workout. Exported fields form the persisted
// snapshot; dependencies are reattached on restore.
type Session struct {
	SessionID     uuid.UUID             `json:"session_id"`
	RoutineID     uuid.UUID             `json:"routine_id"`
	AthleteID     string                `json:"athlete_id"`
	DayIndex      int                   `json:"day_index"`
	DayName       string                `json:"day_name"`
	Status        State                 `json:"status"`
	ExerciseIdx   int                   `json:"exercise_idx"`
	SetIdx        int                   `json:"set_idx"`
	ElapsedSec    int                   `json:"elapsed_sec"`
	RestRemaining int                   `json:"rest_remaining"`
	StartedAt     time.Time             `json:"started_at"`
	Exercises     []models.ExerciseSpec `json:"exercises"` // mutable plan for this run
	Logs          []ExerciseLog         `json:"logs"`

	caps      auth.Capabilities
	store     LocalStore
	queue     RetryQueue
	finalizer Finalizer
	log       *slog.Logger
}

// Deps are the collaborators a session needs.
type Deps struct {
	Caps      auth.Capabilities
	Store     LocalStore
	Queue     RetryQueue
	Finalizer Finalizer
	Log       *slog.Logger
}

// stateKey derives the local-store key from (routine, day).
func stateKey(routineID uuid.UUID, dayIndex int) string {
	return fmt.Sprintf("session:%s:day%d", routineID, dayIndex)
}

// New builds a session for the routine's day, or restores a previously
// persisted one for the same (routine, day) verbatim. Fresh sessions begin in
// NotStarted; call Start to enter InProgress.
func New(deps Deps, routine *models.AssignedRoutine, dayIndex int) (*Session, error) {
	if dayIndex < 0 || dayIndex >= len(routine.Schedule) {
		return nil, domain.Validationf("day index %d out of range", dayIndex)
	}
	day := routine.Schedule[dayIndex]
	if day.IsRest {
		return nil, domain.Validationf("day %q is a rest day", day.Name)
	}
	if len(day.Exercises) == 0 {
		return nil, domain.Validationf("day %q has no exercises", day.Name)
	}

	key := stateKey(routine.ID, dayIndex)
	if blob, err := deps.Store.Get(key); err == nil && blob != nil {
		s := &Session{}
		if err := json.Unmarshal(blob, s); err == nil {
			s.attach(deps)
			return s, nil
		}
		// Unreadable snapshot: fall through and rebuild from the plan.
		deps.Log.Warn("discarding corrupt session snapshot", "key", key)
	}

	s := &Session{
		SessionID: uuid.New(),
		RoutineID: routine.ID,
		AthleteID: routine.AthleteID,
		DayIndex:  dayIndex,
		DayName:   day.Name,
		Status:    StateNotStarted,
		Exercises: make([]models.ExerciseSpec, len(day.Exercises)),
		Logs:      make([]ExerciseLog, len(day.Exercises)),
	}
	copy(s.Exercises, day.Exercises)
	for i, ex := range day.Exercises {
		s.Logs[i] = emptyLog(ex)
	}
	s.attach(deps)
	return s, nil
}

func (s *Session) attach(deps Deps) {
	s.caps = deps.Caps
	s.store = deps.Store
	s.queue = deps.Queue
	s.finalizer = deps.Finalizer
	s.log = deps.Log
}

// emptyLog builds one empty set-log placeholder per planned set, retaining
// targets for display.
func emptyLog(ex models.ExerciseSpec) ExerciseLog {
	l := ExerciseLog{
		ExerciseIDUsed: ex.ExerciseID,
		Sets:           make([]SetLog, len(ex.Sets)),
	}
	for i, set := range ex.Sets {
		l.Sets[i] = SetLog{TargetReps: set.TargetReps, TargetRPE: set.TargetRPE}
	}
	return l
}

// Start moves a fresh session into InProgress. Restored sessions keep their
// persisted state and Start is a no-op.
func (s *Session) Start() error {
	if s.Status != StateNotStarted {
		return nil
	}
	s.Status = StateInProgress
	s.StartedAt = time.Now()
	s.persist()
	return nil
}

func (s *Session) active() bool {
	return s.Status == StateInProgress || s.Status == StateResting
}

// Tick advances the session clock by one second. Drives elapsed time and the
// rest countdown; the caller invokes it from a one-second timer.
func (s *Session) Tick() {
	if !s.active() {
		return
	}
	s.ElapsedSec++
	if s.Status == StateResting {
		s.RestRemaining--
		if s.RestRemaining <= 0 {
			s.RestRemaining = 0
			s.Status = StateInProgress
		}
	}
	s.persist()
}

// LogSet stores the performed values for a set. It never moves the pointer;
// the athlete advances explicitly.
func (s *Session) LogSet(exerciseIdx, setIdx int, weight float64, reps int, rpe *float64) error {
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if err := s.checkSlot(exerciseIdx, setIdx); err != nil {
		return err
	}
	set := &s.Logs[exerciseIdx].Sets[setIdx]
	set.Weight = weight
	set.Reps = reps
	set.RPE = rpe
	s.persist()
	return nil
}

// ToggleSetComplete flips a set's completed flag. Completion order is not
// enforced.
func (s *Session) ToggleSetComplete(exerciseIdx, setIdx int) error {
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if err := s.checkSlot(exerciseIdx, setIdx); err != nil {
		return err
	}
	set := &s.Logs[exerciseIdx].Sets[setIdx]
	set.Completed = !set.Completed
	s.persist()
	return nil
}

// Advance moves the pointer to the next set or exercise and enters the rest
// countdown. It returns done=true when no sets remain, signalling the caller
// to run the finalize flow.
func (s *Session) Advance() (done bool, err error) {
	if !s.active() {
		return false, domain.Validationf("session is %s", s.Status)
	}

	rest := s.Exercises[s.ExerciseIdx].RestSecondsOrDefault()
	switch {
	case s.SetIdx+1 < len(s.Exercises[s.ExerciseIdx].Sets):
		s.SetIdx++
	case s.ExerciseIdx+1 < len(s.Exercises):
		s.ExerciseIdx++
		s.SetIdx = 0
	default:
		return true, nil
	}

	s.Status = StateResting
	s.RestRemaining = rest
	s.persist()
	return false, nil
}

// ExtendRest adds thirty seconds to the current rest countdown.
func (s *Session) ExtendRest() {
	if s.Status != StateResting {
		return
	}
	s.RestRemaining += restExtension
	s.persist()
}

// SkipRest ends the rest countdown immediately.
func (s *Session) SkipRest() {
	if s.Status != StateResting {
		return
	}
	s.RestRemaining = 0
	s.Status = StateInProgress
	s.persist()
}

// SwapExercise replaces the planned exercise at index with a different one.
// Logged values for the slot are cleared: it is a different exercise, not a
// continuation. Privileged.
func (s *Session) SwapExercise(index int, newExercise models.ExerciseSpec) error {
	if !s.caps.CanEditPlannedExercises {
		return domain.Unauthorizedf("swapping exercises requires edit capability")
	}
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if index < 0 || index >= len(s.Exercises) {
		return domain.Validationf("exercise index %d out of range", index)
	}
	if len(newExercise.Sets) == 0 {
		newExercise.Sets = defaultSets()
	}
	s.Exercises[index] = newExercise
	s.Logs[index] = emptyLog(newExercise)
	if s.ExerciseIdx == index && s.SetIdx >= len(newExercise.Sets) {
		s.SetIdx = len(newExercise.Sets) - 1
	}
	s.persist()
	return nil
}

// AddExercise appends an exercise to this run. Appended exercises exist in
// both the mutable plan and the log. Privileged.
func (s *Session) AddExercise(newExercise models.ExerciseSpec) error {
	if !s.caps.CanEditPlannedExercises {
		return domain.Unauthorizedf("adding exercises requires edit capability")
	}
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if len(newExercise.Sets) == 0 {
		newExercise.Sets = defaultSets()
	}
	s.Exercises = append(s.Exercises, newExercise)
	s.Logs = append(s.Logs, emptyLog(newExercise))
	s.persist()
	return nil
}

// RemoveExercise removes the exercise at index. A session always keeps at
// least one exercise. Privileged.
func (s *Session) RemoveExercise(index int) error {
	if !s.caps.CanEditPlannedExercises {
		return domain.Unauthorizedf("removing exercises requires edit capability")
	}
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if index < 0 || index >= len(s.Exercises) {
		return domain.Validationf("exercise index %d out of range", index)
	}
	if len(s.Exercises) == 1 {
		return domain.Validationf("cannot remove the last exercise")
	}

	s.Exercises = append(s.Exercises[:index], s.Exercises[index+1:]...)
	s.Logs = append(s.Logs[:index], s.Logs[index+1:]...)

	// Reindex the pointer: past the removed slot it shifts down; at the
	// removed end slot it clamps to the new last slot.
	if s.ExerciseIdx > index {
		s.ExerciseIdx--
	} else if s.ExerciseIdx == index {
		if s.ExerciseIdx >= len(s.Exercises) {
			s.ExerciseIdx = len(s.Exercises) - 1
		}
		s.SetIdx = 0
	}
	s.persist()
	return nil
}

// SelectVariant records that the athlete executed a listed variant instead of
// the planned exercise. Only the logged identity changes; the plan keeps its
// exercise id.
func (s *Session) SelectVariant(index int, variantID string) error {
	if !s.active() {
		return domain.Validationf("session is %s", s.Status)
	}
	if index < 0 || index >= len(s.Exercises) {
		return domain.Validationf("exercise index %d out of range", index)
	}
	ex := s.Exercises[index]
	if variantID != ex.ExerciseID && !contains(ex.VariantIDs, variantID) {
		return domain.Validationf("%s is not a variant of %s", variantID, ex.ExerciseID)
	}
	s.Logs[index].ExerciseIDUsed = variantID
	s.persist()
	return nil
}

// Cancel discards the session. Local state is removed and no TrainingLog is
// produced. Confirmation happens at the boundary above this engine.
func (s *Session) Cancel() error {
	if !s.active() && s.Status != StateNotStarted {
		return domain.Validationf("session is %s", s.Status)
	}
	s.Status = StateCancelled
	if err := s.store.Remove(stateKey(s.RoutineID, s.DayIndex)); err != nil {
		s.log.Warn("removing cancelled session state", "error", err)
	}
	return nil
}

func (s *Session) checkSlot(exerciseIdx, setIdx int) error {
	if exerciseIdx < 0 || exerciseIdx >= len(s.Logs) {
		return domain.Validationf("exercise index %d out of range", exerciseIdx)
	}
	if setIdx < 0 || setIdx >= len(s.Logs[exerciseIdx].Sets) {
		return domain.Validationf("set index %d out of range", setIdx)
	}
	return nil
}

// persist writes the full session snapshot to local storage. Fire and forget:
// a write failure is logged, never surfaced, because local persistence exists
// only to survive reloads on this device.
func (s *Session) persist() {
	blob, err := json.Marshal(s)
	if err != nil {
		s.log.Warn("marshaling session state", "error", err)
		return
	}
	if err := s.store.Set(stateKey(s.RoutineID, s.DayIndex), blob); err != nil {
		s.log.Warn("persisting session state", "error", err)
	}
}

func defaultSets() []models.SetSpec {
	sets := make([]models.SetSpec, defaultNewExerciseSets)
	for i := range sets {
		sets[i] = models.SetSpec{Type: models.SetWorking}
	}
	return sets
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
