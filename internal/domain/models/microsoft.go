// internal/domain/models/microsoft.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MicrosoftConfiguration holds per-connector settings for the Microsoft
// drive connector. Roots, deltas, and nodes all hang off the connector_id
// and are removed together when the configuration is deleted.
type MicrosoftConfiguration struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConnectorID string             `bson:"connector_id" json:"connector_id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`

	PdfEnabled        bool `bson:"pdf_enabled" json:"pdf_enabled"`
	CsvEnabled        bool `bson:"csv_enabled" json:"csv_enabled"`
	LargeFilesEnabled bool `bson:"large_files_enabled" json:"large_files_enabled"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MicrosoftRoot marks a drive item the connector syncs from.
type MicrosoftRoot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConnectorID string             `bson:"connector_id" json:"connector_id"`
	ItemAPIPath string             `bson:"item_api_path" json:"item_api_path"`
	NodeType    string             `bson:"node_type" json:"node_type"` // "drive" | "folder"
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// MicrosoftDelta stores the delta link used to resume incremental sync of
// a single drive.
type MicrosoftDelta struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConnectorID string             `bson:"connector_id" json:"connector_id"`
	DriveID     string             `bson:"drive_id" json:"drive_id"`
	DeltaLink   string             `bson:"delta_link" json:"delta_link"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// MicrosoftNode is one synced drive item (file or folder) tracked so the
// connector can detect moves and deletions between delta runs.
type MicrosoftNode struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConnectorID      string             `bson:"connector_id" json:"connector_id"`
	InternalID       string             `bson:"internal_id" json:"internal_id"`
	ParentInternalID string             `bson:"parent_internal_id,omitempty" json:"parent_internal_id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	MimeType         string             `bson:"mime_type" json:"mime_type"`
	LastSeenTs       time.Time          `bson:"last_seen_ts" json:"last_seen_ts"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
