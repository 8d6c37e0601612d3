// internal/domain/models/workspacemembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace membership roles.
const (
	WorkspaceRoleAdmin   = "admin"
	WorkspaceRoleBuilder = "builder"
	WorkspaceRoleUser    = "user"
)

// WorkspaceMembership joins users to workspaces with a role. Like group
// memberships it is time-bounded; a user has at most one active membership
// per workspace at a time.
type WorkspaceMembership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`

	// Role: "admin" | "builder" | "user"
	Role string `bson:"role" json:"role"`

	StartAt time.Time  `bson:"start_at" json:"start_at"`
	EndAt   *time.Time `bson:"end_at,omitempty" json:"end_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ActiveAt reports whether the membership is valid at t.
func (m WorkspaceMembership) ActiveAt(t time.Time) bool {
	if t.Before(m.StartAt) {
		return false
	}
	return m.EndAt == nil || t.Before(*m.EndAt)
}
