// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ScribeHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SCRIBEHUB_MONGO_URI, SCRIBEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "scribe_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "scribehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session lifetime (e.g., 24h, 168h)"},
	{Name: "csrf_key", Default: "", Desc: "CSRF token key (32 bytes; falls back to session_key)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@scribehub.io", Desc: "From email address"},
	{Name: "mail_from_name", Default: "ScribeHub", Desc: "From display name"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for links in notification emails"},

	// Assistant platform
	{Name: "assistant_base_url", Default: "", Desc: "Assistant platform base URL"},
	{Name: "assistant_api_key", Default: "", Desc: "Assistant platform API key"},
	{Name: "assistant_workspace_id", Default: "", Desc: "Assistant platform workspace ID"},

	// Google OAuth configuration (google_meet transcript provider)
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Transcript pipeline
	{Name: "transcript_poll_interval", Default: "15m", Desc: "Interval between transcript discovery runs (0 disables the worker)"},
	{Name: "min_transcript_length", Default: 600, Desc: "Minimum transcript length in characters; shorter files are skipped"},
	{Name: "answer_deadline", Default: "5m", Desc: "Maximum wait for an agent reply"},
	{Name: "index_transcripts", Default: true, Desc: "Upsert processed transcripts into the document index"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SCRIBEHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SCRIBEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 168*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		AssistantBaseURL:     appValues.String("assistant_base_url"),
		AssistantAPIKey:      appValues.String("assistant_api_key"),
		AssistantWorkspaceID: appValues.String("assistant_workspace_id"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		TranscriptPollInterval: appValues.Duration("transcript_poll_interval", 15*time.Minute),
		MinTranscriptLength:    appValues.Int("min_transcript_length"),
		AnswerDeadline:         appValues.Duration("answer_deadline", 5*time.Minute),
		IndexTranscripts:       appValues.Bool("index_transcripts"),
	}

	if appCfg.CSRFKey == "" {
		appCfg.CSRFKey = appCfg.SessionKey
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// ScribeHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and requires the assistant
// platform settings when the transcript worker is enabled.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.TranscriptPollInterval > 0 {
		if appCfg.AssistantBaseURL == "" || appCfg.AssistantAPIKey == "" || appCfg.AssistantWorkspaceID == "" {
			return fmt.Errorf("transcript worker enabled but assistant_base_url, assistant_api_key, or assistant_workspace_id is missing (set transcript_poll_interval to 0 to disable)")
		}
	}

	if appCfg.MinTranscriptLength < 0 {
		return fmt.Errorf("min_transcript_length must not be negative")
	}

	return nil
}
