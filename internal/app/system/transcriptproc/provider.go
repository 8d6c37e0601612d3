// internal/app/system/transcriptproc/provider.go
//
// Package transcriptproc discovers meeting transcripts from external
// recording providers and turns each one into an assistant conversation
// plus a summary email.
package transcriptproc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/domain/models"
)

// FileInfo is one discoverable recording at a provider.
type FileInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Transcript is the fetched content of one recording.
type Transcript struct {
	Title   string
	Content string
}

// Provider lists and fetches meeting transcripts from one recording
// platform. Implementations hold the credentials of a single user's
// transcript configuration.
type Provider interface {
	Name() string
	ListNewTranscripts(ctx context.Context) ([]FileInfo, error)
	FetchTranscript(ctx context.Context, fileID string) (Transcript, error)
}

// ProviderFactory builds the provider matching a configuration. The
// pipeline takes a factory so tests can substitute fakes.
type ProviderFactory func(cfg models.TranscriptConfiguration) (Provider, error)

// GoogleOAuth holds the application's OAuth client used to redeem the
// refresh tokens stored on google_meet configurations.
type GoogleOAuth struct {
	ClientID     string
	ClientSecret string
}

// NewProvider is the production factory.
func NewProvider(google GoogleOAuth, logger *zap.Logger) ProviderFactory {
	return func(cfg models.TranscriptConfiguration) (Provider, error) {
		switch cfg.Provider {
		case models.ProviderGong:
			return newGongProvider(cfg.APIKey, logger), nil
		case models.ProviderModjo:
			return newModjoProvider(cfg.APIKey, logger), nil
		case models.ProviderGoogleMeet:
			return newGoogleMeetProvider(google, cfg.RefreshToken, logger), nil
		default:
			return nil, fmt.Errorf("unknown transcript provider %q", cfg.Provider)
		}
	}
}
