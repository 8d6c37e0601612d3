// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group kinds. Only "regular" groups may be edited through the membership
// API; "system" groups are managed internally and "provisioned" groups are
// mirrored from an external directory.
const (
	GroupKindSystem      = "system"
	GroupKindRegular     = "regular"
	GroupKindProvisioned = "provisioned"
)

// Group is a named collection of users inside a workspace.
//
// NOTE:
//   - Member lists are not embedded on Group. All membership lives in the
//     group_memberships collection.
type Group struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	// Kind: "system" | "regular" | "provisioned"
	Kind string `bson:"kind" json:"kind"`

	// Status: "active" or "disabled"
	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsRegular reports whether the group can be mutated through the
// membership API.
func (g Group) IsRegular() bool {
	return g.Kind == GroupKindRegular
}
