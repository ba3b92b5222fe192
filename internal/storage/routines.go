package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// ReplaceActiveRoutine deactivates every active routine for the athlete and
// inserts the new one, in a single transaction. Other readers never observe
// two active routines or a half-applied state.
func (db *DB) ReplaceActiveRoutine(ctx context.Context, routine *models.AssignedRoutine) error {
	schedule, err := json.Marshal(routine.Schedule)
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning assignment: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE assigned_routines SET active = false
		 WHERE athlete_id = $1 AND active`, routine.AthleteID); err != nil {
		return fmt.Errorf("%w: deactivating routines: %v", domain.ErrPersistence, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO assigned_routines (id, athlete_id, template_id, name, active, start_date, schedule)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		routine.ID, routine.AthleteID, routine.TemplateID, routine.Name,
		routine.Active, routine.StartDate, schedule); err != nil {
		return fmt.Errorf("%w: inserting routine: %v", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing assignment: %v", domain.ErrPersistence, err)
	}
	return nil
}

// GetActiveRoutine returns the athlete's single active routine.
func (db *DB) GetActiveRoutine(ctx context.Context, athleteID string) (*models.AssignedRoutine, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, athlete_id, template_id, name, active, start_date, schedule
		 FROM assigned_routines
		 WHERE athlete_id = $1 AND active`, athleteID)

	routine := &models.AssignedRoutine{}
	var schedule []byte
	err := row.Scan(&routine.ID, &routine.AthleteID, &routine.TemplateID,
		&routine.Name, &routine.Active, &routine.StartDate, &schedule)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundf("no active routine for athlete %s", athleteID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying active routine: %w", err)
	}
	if err := json.Unmarshal(schedule, &routine.Schedule); err != nil {
		return nil, fmt.Errorf("unmarshaling schedule: %w", err)
	}
	return routine, nil
}

// CountActiveRoutines reports how many routines are active for the athlete.
// Exposed for invariant checks; the partial unique index keeps this at most 1.
func (db *DB) CountActiveRoutines(ctx context.Context, athleteID string) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assigned_routines WHERE athlete_id = $1 AND active`,
		athleteID).Scan(&n)
	return n, err
}
