// internal/app/features/conversations/handler.go
package conversations

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/app/system/assistant"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
)

// ConversationAPI is the slice of the assistant client this feature
// needs.
type ConversationAPI interface {
	GetConversation(ctx context.Context, sid string) (assistant.Conversation, error)
}

type Handler struct {
	API ConversationAPI
	Log *zap.Logger
}

func NewHandler(api ConversationAPI, logger *zap.Logger) *Handler {
	return &Handler{API: api, Log: logger}
}

type conversationPageData struct {
	viewdata.BaseVM
	Conversation assistant.Conversation
	Messages     []MessageVM
}

// ServeConversation handles GET /conversations/{sid}.
func (h *Handler) ServeConversation(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if sid == "" {
		http.NotFound(w, r)
		return
	}

	conv, err := h.API.GetConversation(r.Context(), sid)
	if err != nil {
		h.Log.Error("conversations: fetch",
			zap.String("conversation_sid", sid),
			zap.Error(err))
		http.Error(w, "conversation unavailable", http.StatusBadGateway)
		return
	}

	viewerName := ""
	if u, ok := auth.CurrentUser(r); ok {
		viewerName = u.Name
	}

	title := conv.Title
	if title == "" {
		title = "Conversation"
	}

	templates.Render(w, r, "conversation_view", conversationPageData{
		BaseVM:       viewdata.NewBaseVM(r, title, "/transcripts"),
		Conversation: conv,
		Messages:     BuildMessageList(conv.Messages, viewerName),
	})
}
