// internal/app/features/transcripts/routes.go
package transcripts

import (
	"github.com/go-chi/chi/v5"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeSettings)
		pr.Post("/", h.HandleSave)
		pr.Post("/delete", h.HandleDelete)
	})

	return r
}
