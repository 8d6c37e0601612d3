// internal/app/system/transcriptproc/pipeline.go
package transcriptproc

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	transcripts "github.com/scribeworks/scribehub/internal/app/store/transcripts"
	users "github.com/scribeworks/scribehub/internal/app/store/users"
	workspaces "github.com/scribeworks/scribehub/internal/app/store/workspaces"
	"github.com/scribeworks/scribehub/internal/app/system/assistant"
	"github.com/scribeworks/scribehub/internal/app/system/docsync"
	"github.com/scribeworks/scribehub/internal/app/system/mailer"
	"github.com/scribeworks/scribehub/internal/app/system/markdown"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

// AssistantAPI is the slice of the assistant client the pipeline needs.
type AssistantAPI interface {
	CreateConversation(ctx context.Context, title string, fragment assistant.ContentFragment, message assistant.Message) (assistant.Conversation, error)
	AwaitAgentAnswer(ctx context.Context, sid string, deadline time.Duration) (string, error)
}

// DocumentIndex is the slice of the docsync client the pipeline needs.
type DocumentIndex interface {
	UpsertDocument(ctx context.Context, cfg docsync.Config, req docsync.UpsertRequest) error
}

// ProcessorConfig tunes the pipeline.
type ProcessorConfig struct {
	SiteName string

	// AppBaseURL builds conversation links in notification emails.
	AppBaseURL string

	// MinTranscriptLength is the character floor below which a fetched
	// transcript is recorded as skipped instead of processed.
	MinTranscriptLength int

	// AnswerDeadline bounds the wait for the agent's reply.
	AnswerDeadline time.Duration
}

// Processor runs the transcript flow for one or all configurations:
// discover provider files, fetch each transcript, open an assistant
// conversation, wait for the summary, and notify the owner.
type Processor struct {
	cfg         ProcessorConfig
	transcripts *transcripts.Store
	users       *users.Store
	workspaces  *workspaces.Store
	providers   ProviderFactory
	agent       AssistantAPI
	mail        mailer.Sender
	log         *zap.Logger

	// Optional content index. When set, processed transcripts are also
	// upserted as documents so they become searchable.
	index        DocumentIndex
	indexBaseURL string
	indexAPIKey  string
}

func NewProcessor(
	cfg ProcessorConfig,
	transcriptStore *transcripts.Store,
	userStore *users.Store,
	workspaceStore *workspaces.Store,
	providers ProviderFactory,
	agent AssistantAPI,
	mail mailer.Sender,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		cfg:         cfg,
		transcripts: transcriptStore,
		users:       userStore,
		workspaces:  workspaceStore,
		providers:   providers,
		agent:       agent,
		mail:        mail,
		log:         logger,
	}
}

// WithDocumentIndex enables transcript upserts into the content index.
func (p *Processor) WithDocumentIndex(index DocumentIndex, baseURL, apiKey string) *Processor {
	p.index = index
	p.indexBaseURL = baseURL
	p.indexAPIKey = apiKey
	return p
}

// Run processes every active configuration. A failing configuration is
// logged and does not stop the rest.
func (p *Processor) Run(ctx context.Context) error {
	configs, err := p.transcripts.ListActiveConfigurations(ctx)
	if err != nil {
		return fmt.Errorf("list active transcript configurations: %w", err)
	}

	for _, cfg := range configs {
		if err := p.ProcessConfiguration(ctx, cfg); err != nil {
			p.log.Error("transcript configuration failed",
				zap.String("configuration_id", cfg.ID.Hex()),
				zap.String("provider", cfg.Provider),
				zap.Error(err))
		}
	}
	return nil
}

// ProcessConfiguration discovers new files for one configuration and
// processes each. A failing file is logged and does not stop the rest.
func (p *Processor) ProcessConfiguration(ctx context.Context, cfg models.TranscriptConfiguration) error {
	provider, err := p.providers(cfg)
	if err != nil {
		return err
	}

	files, err := provider.ListNewTranscripts(ctx)
	if err != nil {
		return fmt.Errorf("list transcripts (%s): %w", provider.Name(), err)
	}

	for _, file := range files {
		if err := p.ProcessFile(ctx, provider, cfg, file); err != nil {
			p.log.Error("transcript file failed",
				zap.String("configuration_id", cfg.ID.Hex()),
				zap.String("file_id", file.ID),
				zap.Error(err))
		}
	}
	return nil
}

// ProcessFile runs the full flow for one provider file. Files already
// present in history are skipped, which makes reprocessing a discovery
// window idempotent.
func (p *Processor) ProcessFile(ctx context.Context, provider Provider, cfg models.TranscriptConfiguration, file FileInfo) error {
	_, err := p.transcripts.GetHistoryByFileID(ctx, cfg.ID, file.ID)
	if err == nil {
		p.log.Debug("transcript already processed",
			zap.String("configuration_id", cfg.ID.Hex()),
			zap.String("file_id", file.ID))
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return fmt.Errorf("check history for %s: %w", file.ID, err)
	}

	transcript, err := provider.FetchTranscript(ctx, file.ID)
	if err != nil {
		return fmt.Errorf("fetch transcript %s: %w", file.ID, err)
	}
	if transcript.Title == "" {
		transcript.Title = file.Name
	}

	user, err := p.users.GetByID(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("load configuration owner: %w", err)
	}

	if len(transcript.Content) < p.cfg.MinTranscriptLength {
		return p.skipShortTranscript(ctx, cfg, file, transcript, user.Email)
	}

	if _, err := p.workspaces.GetByID(ctx, cfg.WorkspaceID); err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if cfg.AgentConfigurationID == "" {
		return fmt.Errorf("configuration %s has no agent", cfg.ID.Hex())
	}

	conv, err := p.agent.CreateConversation(ctx, transcript.Title,
		assistant.ContentFragment{
			Title:       transcript.Title,
			Content:     transcript.Content,
			ContentType: "text/plain",
		},
		assistant.Message{
			Content:  "Please summarize this meeting transcript.",
			Mentions: []assistant.Mention{{ConfigurationID: cfg.AgentConfigurationID}},
		})
	if err != nil {
		return fmt.Errorf("create conversation for %s: %w", file.ID, err)
	}

	answer, err := p.agent.AwaitAgentAnswer(ctx, conv.SID, p.cfg.AnswerDeadline)
	if err != nil {
		return fmt.Errorf("await agent answer for %s: %w", file.ID, err)
	}
	answerHTML := markdown.Render(answer)

	p.indexTranscript(ctx, cfg, file, transcript)

	if _, err := p.transcripts.RecordHistory(ctx, models.TranscriptHistory{
		ConfigurationID: cfg.ID,
		FileID:          file.ID,
		FileName:        transcript.Title,
		ConversationSID: conv.SID,
		Stored:          true,
	}); err != nil {
		return fmt.Errorf("record history for %s: %w", file.ID, err)
	}

	p.log.Info("transcript processed",
		zap.String("configuration_id", cfg.ID.Hex()),
		zap.String("file_id", file.ID),
		zap.String("conversation_sid", conv.SID))

	if !cfg.EmailOnProcess {
		return nil
	}

	email := mailer.BuildTranscriptProcessedEmail(mailer.TranscriptProcessedData{
		SiteName:        p.cfg.SiteName,
		FileName:        transcript.Title,
		Provider:        cfg.Provider,
		ConversationURL: fmt.Sprintf("%s/conversations/%s", p.cfg.AppBaseURL, conv.SID),
		AnswerHTML:      template.HTML(answerHTML),
	})
	email.To = user.Email
	if err := p.mail.Send(email); err != nil {
		p.log.Error("send processed email failed",
			zap.String("to", user.Email),
			zap.Error(err))
	}
	return nil
}

// indexTranscript upserts the transcript text into the content index. An
// index failure never fails the file; the summary already exists.
func (p *Processor) indexTranscript(ctx context.Context, cfg models.TranscriptConfiguration, file FileInfo, transcript Transcript) {
	if p.index == nil {
		return
	}

	syncCfg := docsync.Config{
		BaseURL:        p.indexBaseURL,
		APIKey:         p.indexAPIKey,
		WorkspaceID:    cfg.WorkspaceID.Hex(),
		DataSourceName: "transcripts-" + cfg.Provider,
	}
	req := docsync.NewUpsertRequest(file.ID, transcript.Content)
	if !file.CreatedAt.IsZero() {
		req.Timestamp = file.CreatedAt.UnixMilli()
	}
	req.Tags = []string{"title:" + transcript.Title, "provider:" + cfg.Provider}

	if err := p.index.UpsertDocument(ctx, syncCfg, req); err != nil {
		p.log.Error("index transcript failed",
			zap.String("configuration_id", cfg.ID.Hex()),
			zap.String("file_id", file.ID),
			zap.Error(err))
	}
}

// skipShortTranscript records the file so it is never retried and tells
// the owner why nothing was processed.
func (p *Processor) skipShortTranscript(ctx context.Context, cfg models.TranscriptConfiguration, file FileInfo, transcript Transcript, ownerEmail string) error {
	if _, err := p.transcripts.RecordHistory(ctx, models.TranscriptHistory{
		ConfigurationID: cfg.ID,
		FileID:          file.ID,
		FileName:        transcript.Title,
		Stored:          false,
	}); err != nil {
		return fmt.Errorf("record skipped history for %s: %w", file.ID, err)
	}

	p.log.Info("transcript too short, skipped",
		zap.String("configuration_id", cfg.ID.Hex()),
		zap.String("file_id", file.ID),
		zap.Int("length", len(transcript.Content)),
		zap.Int("min_length", p.cfg.MinTranscriptLength))

	// The skip notice goes out even when summary emails are turned off;
	// without it the owner never learns why a recording produced nothing.
	email := mailer.BuildTranscriptSkippedEmail(mailer.TranscriptSkippedData{
		SiteName:  p.cfg.SiteName,
		FileName:  transcript.Title,
		Provider:  cfg.Provider,
		MinLength: p.cfg.MinTranscriptLength,
	})
	email.To = ownerEmail
	if err := p.mail.Send(email); err != nil {
		p.log.Error("send skipped email failed",
			zap.String("to", ownerEmail),
			zap.Error(err))
	}
	return nil
}
