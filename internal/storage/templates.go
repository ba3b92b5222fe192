package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/domain"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertTemplate stores a coach-authored routine template.
func (db *DB) InsertTemplate(ctx context.Context, tpl *models.RoutineTemplate) error {
	days, err := json.Marshal(tpl.Days)
	if err != nil {
		return fmt.Errorf("marshaling template days: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO routine_templates (id, coach_id, name, type, days)
		 VALUES ($1, $2, $3, $4, $5)`,
		tpl.ID, tpl.CoachID, tpl.Name, tpl.Type, days)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// GetTemplate retrieves one template by id.
func (db *DB) GetTemplate(ctx context.Context, id uuid.UUID) (*models.RoutineTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, coach_id, name, type, days FROM routine_templates WHERE id = $1`, id)

	tpl := &models.RoutineTemplate{}
	var days []byte
	err := row.Scan(&tpl.ID, &tpl.CoachID, &tpl.Name, &tpl.Type, &days)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundf("template %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	if err := json.Unmarshal(days, &tpl.Days); err != nil {
		return nil, fmt.Errorf("unmarshaling template days: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns all templates owned by the coach, newest first.
func (db *DB) ListTemplates(ctx context.Context, coachID string) ([]models.RoutineTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, coach_id, name, type, days
		 FROM routine_templates
		 WHERE coach_id = $1
		 ORDER BY created_at DESC`, coachID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.RoutineTemplate
	for rows.Next() {
		var tpl models.RoutineTemplate
		var days []byte
		if err := rows.Scan(&tpl.ID, &tpl.CoachID, &tpl.Name, &tpl.Type, &days); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		if err := json.Unmarshal(days, &tpl.Days); err != nil {
			return nil, fmt.Errorf("unmarshaling template days: %w", err)
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}
