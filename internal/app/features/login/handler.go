// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/scribeworks/scribehub/internal/app/store/users"
	wsmembershipstore "github.com/scribeworks/scribehub/internal/app/store/wsmemberships"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/app/system/normalize"
	"github.com/scribeworks/scribehub/internal/app/system/status"
	"github.com/scribeworks/scribehub/internal/app/system/timeouts"
	"github.com/scribeworks/scribehub/internal/app/system/viewdata"
	"github.com/scribeworks/scribehub/internal/domain/models"
)

type Handler struct {
	Users       *userstore.Store
	Memberships *wsmembershipstore.Store
	SessionMgr  *auth.SessionManager
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       userstore.New(db),
		Memberships: wsmembershipstore.New(db),
		SessionMgr:  sessionMgr,
		Log:         logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// ServeForm handles GET /login.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, signedIn := auth.CurrentUser(r); signedIn {
		http.Redirect(w, r, safeReturnURL(r.URL.Query().Get("return")), http.StatusSeeOther)
		return
	}

	data := loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL: safeReturnURL(r.URL.Query().Get("return")),
	}
	templates.Render(w, r, "login", data)
}

// HandleSubmit handles POST /login.
//
// On bad credentials or a disabled account the form is re-rendered with
// a single generic error; which part failed is never disclosed.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	email := normalize.Email(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	returnURL := safeReturnURL(r.PostFormValue("return"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	fail := func() {
		data := loginFormData{
			BaseVM:    viewdata.NewBaseVM(r, "Sign in", "/"),
			Error:     "Invalid email or password.",
			Email:     email,
			ReturnURL: returnURL,
		}
		w.WriteHeader(http.StatusUnauthorized)
		templates.Render(w, r, "login", data)
	}

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("login: user lookup failed", zap.Error(err))
		}
		fail()
		return
	}
	if user.Status == status.Disabled || user.PasswordHash == "" {
		fail()
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		fail()
		return
	}

	sessionUser := auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  h.resolveRole(r, user),
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("login: session write failed", zap.Error(err))
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", sessionUser.ID),
		zap.String("role", sessionUser.Role))
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// resolveRole picks the session role from the user's oldest active
// workspace membership, defaulting to "user".
func (h *Handler) resolveRole(r *http.Request, user *models.User) string {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login role lookup")
	defer cancel()

	memberships, err := h.Memberships.ListActiveByUser(ctx, user.ID)
	if err != nil || len(memberships) == 0 {
		return models.WorkspaceRoleUser
	}
	return memberships[0].Role
}

// safeReturnURL only allows same-site relative paths.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}
