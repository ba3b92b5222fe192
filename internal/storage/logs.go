package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
)

// SubmitTrainingLog inserts a finalized log and its sets in one transaction.
// The session id is the idempotency key: a retried submit for the same
// session inserts nothing and reports inserted=false.
func (db *DB) SubmitTrainingLog(ctx context.Context, log *models.TrainingLog) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: beginning log submit: %v", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO training_logs (id, session_id, athlete_id, date, duration_sec, session_rpe, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (session_id) DO NOTHING`,
		log.ID, log.SessionID, log.AthleteID, log.Date, log.DurationSec,
		log.SessionRPE, log.Notes, log.Status)
	if err != nil {
		return false, fmt.Errorf("%w: inserting training log: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		// Already finalized by an earlier attempt; nothing else to write.
		return false, tx.Commit(ctx)
	}

	var sets []models.LoggedSet
	for _, ex := range log.Exercises {
		sets = append(sets, ex.Sets...)
	}
	if len(sets) > 0 {
		query := `INSERT INTO logged_sets (id, session_id, athlete_id, exercise_id, weight, reps, rpe, performed_at) VALUES `
		args := make([]any, 0, len(sets)*8)
		valueStrings := make([]string, 0, len(sets))
		for i, s := range sets {
			base := i * 8
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
			))
			args = append(args, s.ID, s.SessionID, s.AthleteID, s.ExerciseID,
				s.Weight, s.Reps, s.RPE, s.PerformedAt)
		}
		query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return false, fmt.Errorf("%w: inserting logged sets: %v", domain.ErrPersistence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("%w: committing log submit: %v", domain.ErrPersistence, err)
	}
	return true, nil
}

// QueryTrainingLogs retrieves finalized logs for an athlete in a date range,
// newest first.
func (db *DB) QueryTrainingLogs(ctx context.Context, athleteID string, start, end time.Time) ([]models.TrainingLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, athlete_id, date, duration_sec, session_rpe, notes, status
		 FROM training_logs
		 WHERE athlete_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC`,
		athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying training logs: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingLog
	for rows.Next() {
		var l models.TrainingLog
		if err := rows.Scan(&l.ID, &l.SessionID, &l.AthleteID, &l.Date,
			&l.DurationSec, &l.SessionRPE, &l.Notes, &l.Status); err != nil {
			return nil, fmt.Errorf("scanning training log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// HasLogOnDate reports whether at least one finalized log exists for the
// athlete on the given calendar date.
func (db *DB) HasLogOnDate(ctx context.Context, athleteID string, date time.Time) (bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM training_logs
		 WHERE athlete_id = $1 AND date >= $2 AND date < $3`,
		athleteID, dayStart, dayStart.AddDate(0, 0, 1)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking logs on date: %w", err)
	}
	return n > 0, nil
}

// RecentSets returns the athlete's most recent sets for an exercise, newest
// first, capped at limit. Feeds the progression engine.
func (db *DB) RecentSets(ctx context.Context, athleteID, exerciseID string, limit int) ([]models.LoggedSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, session_id, athlete_id, exercise_id, weight, reps, rpe, performed_at
		 FROM logged_sets
		 WHERE athlete_id = $1 AND exercise_id = $2
		 ORDER BY performed_at DESC
		 LIMIT $3`,
		athleteID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	var result []models.LoggedSet
	for rows.Next() {
		var s models.LoggedSet
		if err := rows.Scan(&s.ID, &s.SessionID, &s.AthleteID, &s.ExerciseID,
			&s.Weight, &s.Reps, &s.RPE, &s.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning logged set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
