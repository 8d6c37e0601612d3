// internal/app/features/transcripts/handler.go
package transcripts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	transcriptstore "github.com/scribeworks/scribehub/internal/app/store/transcripts"
	wsmembershipstore "github.com/scribeworks/scribehub/internal/app/store/wsmemberships"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/app/system/timeouts"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

// historyPageSize caps the history list on the settings page.
const historyPageSize = 50

type Handler struct {
	Transcripts *transcriptstore.Store
	WSMembers   *wsmembershipstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Transcripts: transcriptstore.New(db),
		WSMembers:   wsmembershipstore.New(db),
		Log:         logger,
	}
}

type settingsData struct {
	viewdata.BaseVM
	Configured bool
	Config     models.TranscriptConfiguration
	Providers  []string
	History    []models.TranscriptHistory
	Error      string
}

var providerChoices = []string{
	models.ProviderGong,
	models.ProviderModjo,
	models.ProviderGoogleMeet,
}

// ServeSettings handles GET /transcripts.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transcripts settings")
	defer cancel()

	data, ok := h.loadSettings(ctx, w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "transcript_settings", data)
}

// HandleSave handles POST /transcripts. It creates the user's
// configuration on first submit and updates it afterwards.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transcripts save")
	defer cancel()

	userID, wsID, ok := h.resolveScope(ctx, w, r)
	if !ok {
		return
	}

	provider := r.PostFormValue("provider")
	apiKey := strings.TrimSpace(r.PostFormValue("api_key"))
	refreshToken := strings.TrimSpace(r.PostFormValue("refresh_token"))
	agentID := strings.TrimSpace(r.PostFormValue("agent_configuration_id"))
	isActive := r.PostFormValue("is_active") != ""
	emailOnProcess := r.PostFormValue("email_on_process") != ""

	renderErr := func(msg string) {
		data, ok := h.loadSettings(ctx, w, r)
		if !ok {
			return
		}
		data.Error = msg
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "transcript_settings", data)
	}

	if !validProvider(provider) {
		renderErr("Choose a transcript provider.")
		return
	}
	if agentID == "" {
		renderErr("An agent is required to summarize transcripts.")
		return
	}

	cfg, err := h.Transcripts.GetConfigurationByUser(ctx, wsID, userID)
	switch {
	case err == nil:
		if err := h.Transcripts.UpdateProvider(ctx, cfg.ID, provider, apiKey, refreshToken); err != nil {
			h.Log.Error("transcripts: update provider", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if err := h.Transcripts.UpdateConfiguration(ctx, cfg.ID, agentID, isActive, emailOnProcess); err != nil {
			h.Log.Error("transcripts: update configuration", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	case errors.Is(err, transcriptstore.ErrNotFound):
		_, err := h.Transcripts.CreateConfiguration(ctx, models.TranscriptConfiguration{
			WorkspaceID:          wsID,
			UserID:               userID,
			Provider:             provider,
			APIKey:               apiKey,
			RefreshToken:         refreshToken,
			AgentConfigurationID: agentID,
			IsActive:             isActive,
			EmailOnProcess:       emailOnProcess,
		})
		if err != nil {
			h.Log.Error("transcripts: create configuration", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	default:
		h.Log.Error("transcripts: load configuration", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("transcript configuration saved",
		zap.String("user_id", userID.Hex()),
		zap.String("provider", provider),
		zap.Bool("is_active", isActive))
	http.Redirect(w, r, "/transcripts", http.StatusSeeOther)
}

// HandleDelete handles POST /transcripts/delete. History rows go with
// the configuration.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "transcripts delete")
	defer cancel()

	userID, wsID, ok := h.resolveScope(ctx, w, r)
	if !ok {
		return
	}

	cfg, err := h.Transcripts.GetConfigurationByUser(ctx, wsID, userID)
	if err != nil {
		if errors.Is(err, transcriptstore.ErrNotFound) {
			http.Redirect(w, r, "/transcripts", http.StatusSeeOther)
			return
		}
		h.Log.Error("transcripts: load configuration", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if err := h.Transcripts.DeleteConfiguration(ctx, cfg.ID); err != nil {
		h.Log.Error("transcripts: delete configuration", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("transcript configuration deleted",
		zap.String("configuration_id", cfg.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/transcripts", http.StatusSeeOther)
}

func (h *Handler) loadSettings(ctx context.Context, w http.ResponseWriter, r *http.Request) (settingsData, bool) {
	userID, wsID, ok := h.resolveScope(ctx, w, r)
	if !ok {
		return settingsData{}, false
	}

	data := settingsData{
		BaseVM:    viewdata.NewBaseVM(r, "Meeting transcripts", "/"),
		Providers: providerChoices,
	}

	cfg, err := h.Transcripts.GetConfigurationByUser(ctx, wsID, userID)
	if err != nil {
		if errors.Is(err, transcriptstore.ErrNotFound) {
			return data, true
		}
		h.Log.Error("transcripts: load configuration", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return settingsData{}, false
	}

	data.Configured = true
	data.Config = cfg

	history, err := h.Transcripts.ListRecentHistory(ctx, cfg.ID, historyPageSize)
	if err != nil {
		h.Log.Error("transcripts: list history", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return settingsData{}, false
	}
	data.History = history

	return data, true
}

// resolveScope returns the signed-in user's ID and the workspace of their
// oldest active membership.
func (h *Handler) resolveScope(ctx context.Context, w http.ResponseWriter, r *http.Request) (userID, wsID primitive.ObjectID, ok bool) {
	u, signedIn := auth.CurrentUser(r)
	if !signedIn {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	memberships, err := h.WSMembers.ListActiveByUser(ctx, userID)
	if err != nil {
		h.Log.Error("transcripts: list workspace memberships", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	if len(memberships) == 0 {
		http.Error(w, "no workspace membership", http.StatusForbidden)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return userID, memberships[0].WorkspaceID, true
}

func validProvider(p string) bool {
	for _, choice := range providerChoices {
		if p == choice {
			return true
		}
	}
	return false
}
