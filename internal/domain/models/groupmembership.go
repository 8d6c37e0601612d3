// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMembership is the authoritative join between users and groups.
// Membership validity is time-bounded: a membership is active when
// start_at <= now and end_at is unset or in the future. Revoking a
// membership sets end_at instead of deleting the row, so history survives.
type GroupMembership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`

	StartAt time.Time  `bson:"start_at" json:"start_at"`
	EndAt   *time.Time `bson:"end_at,omitempty" json:"end_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ActiveAt reports whether the membership is valid at t.
func (m GroupMembership) ActiveAt(t time.Time) bool {
	if t.Before(m.StartAt) {
		return false
	}
	return m.EndAt == nil || t.Before(*m.EndAt)
}
