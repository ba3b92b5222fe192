package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/auth"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by login name. New users default to
// the athlete role. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, display_name, role)
		VALUES ($1, $2, 'athlete')
		ON CONFLICT (id) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// Resolve implements auth.Resolver: the actor's stored role is mapped to a
// capability set once, here, and consumed as opaque booleans downstream.
// Unknown actors resolve to the empty (athlete) set.
func (db *DB) Resolve(ctx context.Context, actorID string) (auth.Capabilities, error) {
	var role string
	err := db.Pool.QueryRow(ctx,
		`SELECT role FROM users WHERE id = $1`, actorID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Capabilities{}, nil
	}
	if err != nil {
		return auth.Capabilities{}, fmt.Errorf("resolving capabilities: %w", err)
	}
	return auth.FromRole(role), nil
}
