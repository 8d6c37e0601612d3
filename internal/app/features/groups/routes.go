// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.WorkspaceRoleAdmin, models.WorkspaceRoleBuilder))

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{groupID}", h.ServeView)
		pr.Post("/{groupID}/delete", h.HandleDelete)
		pr.Post("/{groupID}/members", h.HandleAddMember)
		pr.Post("/{groupID}/members/{userID}/remove", h.HandleRemoveMember)
	})

	return r
}
