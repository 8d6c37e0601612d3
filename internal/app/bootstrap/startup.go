// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	transcriptstore "github.com/scribeworks/scribehub/internal/app/store/transcripts"
	userstore "github.com/scribeworks/scribehub/internal/app/store/users"
	workspacestore "github.com/scribeworks/scribehub/internal/app/store/workspaces"
	"github.com/scribeworks/scribehub/internal/app/system/assistant"
	"github.com/scribeworks/scribehub/internal/app/system/docsync"
	"github.com/scribeworks/scribehub/internal/app/system/mailer"
	"github.com/scribeworks/scribehub/internal/app/system/syncmetrics"
	"github.com/scribeworks/scribehub/internal/app/system/transcriptproc"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
	"github.com/scribeworks/scribehub/internal/app/system/workers"
)

// Shared app state built during Startup and used by BuildHandler and
// Shutdown. WAFFLE hooks pass only config and DB deps between stages,
// so anything else built once lives here.
var (
	syncRegistry     = syncmetrics.NewRegistry()
	assistantClient  *assistant.Client
	transcriptWorker *workers.TranscriptSync
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. ScribeHub
// builds the assistant client, the transcript pipeline, and (when enabled)
// starts the background sync worker here.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	assistantClient = assistant.NewClient(assistant.Config{
		BaseURL:     appCfg.AssistantBaseURL,
		APIKey:      appCfg.AssistantAPIKey,
		WorkspaceID: appCfg.AssistantWorkspaceID,
	}, logger)

	mail := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	db := deps.MongoDatabase
	processor := transcriptproc.NewProcessor(
		transcriptproc.ProcessorConfig{
			SiteName:            viewdata.SiteName,
			AppBaseURL:          appCfg.BaseURL,
			MinTranscriptLength: appCfg.MinTranscriptLength,
			AnswerDeadline:      appCfg.AnswerDeadline,
		},
		transcriptstore.New(db),
		userstore.New(db),
		workspacestore.New(db),
		transcriptproc.NewProvider(transcriptproc.GoogleOAuth{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
		}, logger),
		assistantClient,
		mail,
		logger,
	)

	if appCfg.IndexTranscripts {
		processor.WithDocumentIndex(
			docsync.NewClient(logger, syncRegistry),
			appCfg.AssistantBaseURL,
			appCfg.AssistantAPIKey,
		)
	}

	if appCfg.TranscriptPollInterval > 0 {
		transcriptWorker = workers.NewTranscriptSync(processor, logger, appCfg.TranscriptPollInterval)
		transcriptWorker.Start()
	} else {
		logger.Info("transcript sync worker disabled")
	}

	return nil
}
