// internal/app/features/conversations/routes.go
package conversations

import (
	"github.com/go-chi/chi/v5"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{sid}", h.ServeConversation)
	})

	return r
}
