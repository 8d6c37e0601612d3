// internal/domain/models/transcript.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transcript providers.
const (
	ProviderGong       = "gong"
	ProviderModjo      = "modjo"
	ProviderGoogleMeet = "google_meet"
)

// TranscriptConfiguration is a per-user setting selecting a transcript
// provider and the assistant agent that summarizes incoming transcripts.
type TranscriptConfiguration struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`

	// Provider: "gong" | "modjo" | "google_meet"
	Provider string `bson:"provider" json:"provider"`

	// Provider credentials. APIKey carries the bearer/API key for gong and
	// modjo; RefreshToken carries the OAuth refresh token for google_meet.
	APIKey       string `bson:"api_key,omitempty" json:"-"`
	RefreshToken string `bson:"refresh_token,omitempty" json:"-"`

	// Agent that produces the summary, by its assistant-API handle.
	AgentConfigurationID string `bson:"agent_configuration_id" json:"agent_configuration_id"`

	IsActive       bool `bson:"is_active" json:"is_active"`
	EmailOnProcess bool `bson:"email_on_process" json:"email_on_process"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TranscriptHistory records one processed provider file. The
// (configuration_id, file_id) pair is unique: an existing row means the
// file was already handled and must not produce a second conversation.
// Stored is false for files that were skipped (e.g. below the minimum
// length) but still remembered.
type TranscriptHistory struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConfigurationID primitive.ObjectID `bson:"configuration_id" json:"configuration_id"`
	FileID          string             `bson:"file_id" json:"file_id"`
	FileName        string             `bson:"file_name" json:"file_name"`

	// ConversationSID is the assistant-API conversation handle, set only
	// when a conversation was actually created.
	ConversationSID string `bson:"conversation_sid,omitempty" json:"conversation_sid,omitempty"`

	Stored bool `bson:"stored" json:"stored"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
