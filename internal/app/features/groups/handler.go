// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	groupstore "github.com/scribeworks/scribehub/internal/app/store/groups"
	membershipstore "github.com/scribeworks/scribehub/internal/app/store/memberships"
	userstore "github.com/scribeworks/scribehub/internal/app/store/users"
	workspacestore "github.com/scribeworks/scribehub/internal/app/store/workspaces"
	"github.com/scribeworks/scribehub/internal/app/system/timeouts"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

type Handler struct {
	Groups     *groupstore.Store
	Members    *membershipstore.Store
	Users      *userstore.Store
	Workspaces *workspacestore.Store
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:     groupstore.New(db),
		Members:    membershipstore.New(db),
		Users:      userstore.New(db),
		Workspaces: workspacestore.New(db),
		Log:        logger,
	}
}

type groupRow struct {
	models.Group
	MemberCount int64
}

type listData struct {
	viewdata.BaseVM
	Workspaces []models.Workspace
	Workspace  models.Workspace
	Groups     []groupRow
}

type newFormData struct {
	viewdata.BaseVM
	Workspace   models.Workspace
	Error       string
	Name        string
	Description string
}

type memberRow struct {
	UserID   string
	FullName string
	Email    string
	Since    time.Time
}

type viewPageData struct {
	viewdata.BaseVM
	Workspace models.Workspace
	Group     models.Group
	Members   []memberRow
	Error     string
	Email     string
}

// ServeList handles GET /groups. The workspace is selected with the
// "workspace" query parameter; without one the first workspace is shown.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups list")
	defer cancel()

	workspaces, err := h.Workspaces.Find(ctx, bson.M{})
	if err != nil {
		h.Log.Error("groups: list workspaces", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if len(workspaces) == 0 {
		templates.Render(w, r, "groups_list", listData{
			BaseVM: viewdata.NewBaseVM(r, "Groups", "/"),
		})
		return
	}

	ws := workspaces[0]
	if raw := r.URL.Query().Get("workspace"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "bad workspace id", http.StatusBadRequest)
			return
		}
		ws, err = h.Workspaces.GetByID(ctx, id)
		if err != nil {
			http.NotFound(w, r)
			return
		}
	}

	groups, err := h.Groups.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		h.Log.Error("groups: list by workspace", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	rows := make([]groupRow, 0, len(groups))
	for _, g := range groups {
		count, err := h.Members.CountActiveByGroup(ctx, g.ID)
		if err != nil {
			h.Log.Warn("groups: member count", zap.String("group_id", g.ID.Hex()), zap.Error(err))
		}
		rows = append(rows, groupRow{Group: g, MemberCount: count})
	}

	templates.Render(w, r, "groups_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Groups", "/"),
		Workspaces: workspaces,
		Workspace:  ws,
		Groups:     rows,
	})
}

// ServeNew handles GET /groups/new.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "groups new")
	defer cancel()

	ws, err := h.workspaceFromParam(ctx, r.URL.Query().Get("workspace"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	templates.Render(w, r, "group_new", newFormData{
		BaseVM:    viewdata.NewBaseVM(r, "New group", "/groups"),
		Workspace: ws,
	})
}

// HandleCreate handles POST /groups.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups create")
	defer cancel()

	ws, err := h.workspaceFromParam(ctx, r.PostFormValue("workspace_id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	desc := strings.TrimSpace(r.PostFormValue("description"))

	renderErr := func(status int, msg string) {
		w.WriteHeader(status)
		templates.Render(w, r, "group_new", newFormData{
			BaseVM:      viewdata.NewBaseVM(r, "New group", "/groups"),
			Workspace:   ws,
			Error:       msg,
			Name:        name,
			Description: desc,
		})
	}

	if name == "" {
		renderErr(http.StatusUnprocessableEntity, "Group name is required.")
		return
	}

	g, err := h.Groups.Create(ctx, models.Group{
		WorkspaceID: ws.ID,
		Name:        name,
		Description: desc,
		Kind:        models.GroupKindRegular,
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			renderErr(http.StatusConflict, "A group with this name already exists.")
			return
		}
		h.Log.Error("groups: create", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("workspace_id", ws.ID.Hex()))
	http.Redirect(w, r, "/groups/"+g.ID.Hex(), http.StatusSeeOther)
}

// ServeView handles GET /groups/{groupID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups view")
	defer cancel()

	data, ok := h.loadViewData(ctx, w, r)
	if !ok {
		return
	}
	templates.Render(w, r, "group_view", data)
}

// HandleDelete handles POST /groups/{groupID}/delete. Membership rows go
// with the group.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups delete")
	defer cancel()

	g, ok := h.groupFromPath(ctx, w, r)
	if !ok {
		return
	}

	deleted, err := h.Groups.Delete(ctx, g.ID)
	if err != nil {
		h.Log.Error("groups: delete", zap.String("group_id", g.ID.Hex()), zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("group deleted",
		zap.String("group_id", g.ID.Hex()),
		zap.Int64("deleted", deleted))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
		return
	}
	http.Redirect(w, r, "/groups?workspace="+g.WorkspaceID.Hex(), http.StatusSeeOther)
}

// HandleAddMember handles POST /groups/{groupID}/members. Each membership
// precondition failure maps to its own status code so API callers can tell
// them apart.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups add member")
	defer cancel()

	g, ok := h.groupFromPath(ctx, w, r)
	if !ok {
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))

	fail := func(status int, code, msg string) {
		if wantsJSON(r) {
			writeJSONError(w, status, code, msg)
			return
		}
		data, ok := h.loadViewDataFor(ctx, r, g)
		if !ok {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		data.Error = msg
		data.Email = email
		w.WriteHeader(status)
		templates.Render(w, r, "group_view", data)
	}

	if email == "" {
		fail(http.StatusUnprocessableEntity, "email_required", "An email address is required.")
		return
	}

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			fail(http.StatusNotFound, "user_not_found", "No user with this email address exists.")
			return
		}
		h.Log.Error("groups: user lookup", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	m, err := h.Members.AddMember(ctx, g.WorkspaceID, g.ID, user.ID)
	if err != nil {
		status, code := addMemberFailure(err)
		if status == http.StatusInternalServerError {
			h.Log.Error("groups: add member", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		fail(status, code, addMemberMessage(err))
		return
	}

	h.Log.Info("group member added",
		zap.String("group_id", g.ID.Hex()),
		zap.String("user_id", user.ID.Hex()))

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"membership_id": m.ID.Hex(),
			"user_id":       user.ID.Hex(),
			"start_at":      m.StartAt,
		})
		return
	}
	http.Redirect(w, r, "/groups/"+g.ID.Hex(), http.StatusSeeOther)
}

// HandleRemoveMember handles POST /groups/{groupID}/members/{userID}/remove.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "groups remove member")
	defer cancel()

	g, ok := h.groupFromPath(ctx, w, r)
	if !ok {
		return
	}

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}

	if err := h.Members.RemoveMember(ctx, g.ID, userID); err != nil {
		h.Log.Error("groups: remove member", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("group member removed",
		zap.String("group_id", g.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"removed": true})
		return
	}
	http.Redirect(w, r, "/groups/"+g.ID.Hex(), http.StatusSeeOther)
}

// addMemberFailure maps a membership sentinel to its HTTP status and a
// stable machine-readable code.
func addMemberFailure(err error) (int, string) {
	switch {
	case errors.Is(err, membershipstore.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, membershipstore.ErrUserNotWorkspaceMember):
		return http.StatusUnprocessableEntity, "user_not_workspace_member"
	case errors.Is(err, membershipstore.ErrGroupNotRegular):
		return http.StatusForbidden, "group_not_regular"
	case errors.Is(err, membershipstore.ErrAlreadyGroupMember):
		return http.StatusConflict, "user_already_group_member"
	}
	return http.StatusInternalServerError, "internal_error"
}

func addMemberMessage(err error) string {
	switch {
	case errors.Is(err, membershipstore.ErrUserNotFound):
		return "No user with this email address exists."
	case errors.Is(err, membershipstore.ErrUserNotWorkspaceMember):
		return "This user is not a member of the workspace."
	case errors.Is(err, membershipstore.ErrGroupNotRegular):
		return "Only regular groups can be edited."
	case errors.Is(err, membershipstore.ErrAlreadyGroupMember):
		return "This user is already a member of the group."
	}
	return "Something went wrong."
}

func (h *Handler) groupFromPath(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		http.Error(w, "bad group id", http.StatusBadRequest)
		return models.Group{}, false
	}
	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			http.NotFound(w, r)
		} else {
			h.Log.Error("groups: load group", zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return models.Group{}, false
	}
	return g, true
}

func (h *Handler) workspaceFromParam(ctx context.Context, raw string) (models.Workspace, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return models.Workspace{}, err
	}
	return h.Workspaces.GetByID(ctx, id)
}

func (h *Handler) loadViewData(ctx context.Context, w http.ResponseWriter, r *http.Request) (viewPageData, bool) {
	g, ok := h.groupFromPath(ctx, w, r)
	if !ok {
		return viewPageData{}, false
	}
	data, ok := h.loadViewDataFor(ctx, r, g)
	if !ok {
		http.Error(w, "server error", http.StatusInternalServerError)
		return viewPageData{}, false
	}
	return data, true
}

func (h *Handler) loadViewDataFor(ctx context.Context, r *http.Request, g models.Group) (viewPageData, bool) {
	ws, err := h.Workspaces.GetByID(ctx, g.WorkspaceID)
	if err != nil {
		h.Log.Error("groups: load workspace", zap.Error(err))
		return viewPageData{}, false
	}

	memberships, err := h.Members.ListActiveByGroup(ctx, g.ID)
	if err != nil {
		h.Log.Error("groups: list members", zap.Error(err))
		return viewPageData{}, false
	}

	members := make([]memberRow, 0, len(memberships))
	for _, m := range memberships {
		row := memberRow{UserID: m.UserID.Hex(), Since: m.StartAt}
		if u, err := h.Users.GetByID(ctx, m.UserID); err == nil {
			row.FullName = u.FullName
			row.Email = u.Email
		}
		members = append(members, row)
	}

	return viewPageData{
		BaseVM:    viewdata.NewBaseVM(r, g.Name, "/groups?workspace="+g.WorkspaceID.Hex()),
		Workspace: ws,
		Group:     g,
		Members:   members,
	}, true
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}
