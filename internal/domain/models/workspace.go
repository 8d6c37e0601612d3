// internal/domain/models/workspace.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is the top-level tenant container in ScribeHub.
// Groups, users, connector state, and transcript configurations all belong
// to exactly one workspace via their workspace_id field.
type Workspace struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Display name for the workspace
	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"` // Case-insensitive for search

	// Subdomain for this workspace (e.g., "acme" for acme.scribehub.dev)
	// Must be unique across all workspaces
	Subdomain string `bson:"subdomain" json:"subdomain"`

	// Status: "active" or "disabled"
	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
