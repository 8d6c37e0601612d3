// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// log level, request limits). AppConfig is everything specific to
// ScribeHub: database connection, session cookies, mail, the assistant
// platform, transcript providers, and the pipeline knobs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// CSRF protection
	CSRFKey string // 32-byte key for CSRF tokens; falls back to SessionKey when blank

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Base URL for links in notification emails
	BaseURL string

	// Assistant platform (conversations, agents, document index)
	AssistantBaseURL     string
	AssistantAPIKey      string
	AssistantWorkspaceID string

	// Google OAuth client used to redeem google_meet refresh tokens
	GoogleClientID     string
	GoogleClientSecret string

	// Transcript pipeline
	TranscriptPollInterval time.Duration // 0 disables the background worker
	MinTranscriptLength    int           // character floor below which files are skipped
	AnswerDeadline         time.Duration // bound on the wait for an agent reply
	IndexTranscripts       bool          // upsert processed transcripts into the document index
}
