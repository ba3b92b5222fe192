// Package auth resolves an authenticated actor into an opaque capability set.
// Role names live in storage only; everything downstream consumes booleans.
package auth

import "context"

// Capabilities is the resolved permission set for one actor. Computed once
// per request or session and passed down as plain booleans.
type Capabilities struct {
	CanEditPlannedExercises bool `json:"can_edit_planned_exercises"`
	CanAssignRoutines       bool `json:"can_assign_routines"`
}

// Resolver maps an actor ID to its capability set.
type Resolver interface {
	Resolve(ctx context.Context, actorID string) (Capabilities, error)
}

// FromRole maps a stored role name to capabilities. This is the single place
// role strings are interpreted.
func FromRole(role string) Capabilities {
	switch role {
	case "coach", "admin":
		return Capabilities{
			CanEditPlannedExercises: true,
			CanAssignRoutines:       true,
		}
	default: // athlete
		return Capabilities{}
	}
}

// StaticResolver returns the same capabilities for every actor. Used by the
// device session CLI, where the capability set arrives with the routine.
type StaticResolver struct {
	Caps Capabilities
}

func (r StaticResolver) Resolve(ctx context.Context, actorID string) (Capabilities, error) {
	return r.Caps, nil
}
