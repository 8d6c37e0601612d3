// internal/app/features/status/routes.go
package status

import (
	"github.com/go-chi/chi/v5"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.WorkspaceRoleAdmin))

		pr.Get("/", h.Serve)
		pr.Get("/status.json", h.ServeJSON)
	})

	return r
}
