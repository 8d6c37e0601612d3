// internal/app/bootstrap/config_test.go
package bootstrap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:             "mongodb://localhost:27017",
		MongoDatabase:        "scribe_hub_test",
		AssistantBaseURL:     "https://assistant.example.com",
		AssistantAPIKey:      "test-key",
		AssistantWorkspaceID: "ws-1",

		TranscriptPollInterval: 15 * time.Minute,
		MinTranscriptLength:    600,
		AnswerDeadline:         5 * time.Minute,
	}
}

func TestValidateConfig_AcceptsValidConfig(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "http://not-a-mongo-uri"

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid MongoDB URI")
	}
}

func TestValidateConfig_RequiresAssistantWhenWorkerEnabled(t *testing.T) {
	cfg := validAppConfig()
	cfg.AssistantAPIKey = ""

	err := ValidateConfig(nil, cfg, zap.NewNop())
	if err == nil {
		t.Fatal("expected error when worker is enabled without assistant credentials")
	}
	if !strings.Contains(err.Error(), "assistant") {
		t.Errorf("error should mention assistant settings, got %v", err)
	}
}

func TestValidateConfig_AllowsMissingAssistantWhenWorkerDisabled(t *testing.T) {
	cfg := validAppConfig()
	cfg.AssistantBaseURL = ""
	cfg.AssistantAPIKey = ""
	cfg.AssistantWorkspaceID = ""
	cfg.TranscriptPollInterval = 0

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Fatalf("expected disabled worker to skip assistant checks, got %v", err)
	}
}

func TestValidateConfig_RejectsNegativeMinLength(t *testing.T) {
	cfg := validAppConfig()
	cfg.MinTranscriptLength = -1

	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for negative min_transcript_length")
	}
}
