package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/scribeworks/scribehub/internal/app/features/login"
	userstore "github.com/scribeworks/scribehub/internal/app/store/users"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
	"github.com/scribeworks/scribehub/internal/testutil"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	return login.NewHandler(db, sessionMgr, logger), testutil.NewFixtures(t, db), userstore.New(db)
}

func postLogin(t *testing.T, handler *login.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)
	return rec
}

func TestHandleSubmit_ValidCredentials(t *testing.T) {
	handler, fx, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := users.SetPasswordHash(ctx, user.ID, string(hash)); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}

	rec := postLogin(t, handler, "ada@example.com", "correct horse")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if cookies := rec.Result().Cookies(); len(cookies) == 0 {
		t.Error("expected a session cookie to be set")
	}
}

func TestHandleSubmit_WrongPassword(t *testing.T) {
	handler, fx, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err := users.SetPasswordHash(ctx, user.ID, string(hash)); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}

	func() {
		defer func() { recover() }() // form re-render may panic without templates
		rec := postLogin(t, handler, "ada@example.com", "wrong")
		if rec.Code == http.StatusSeeOther {
			t.Error("expected login to fail for wrong password")
		}
	}()
}

func TestHandleSubmit_UnknownUser(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	func() {
		defer func() { recover() }()
		rec := postLogin(t, handler, "nobody@example.com", "anything")
		if rec.Code == http.StatusSeeOther {
			t.Error("expected login to fail for unknown user")
		}
	}()
}

func TestHandleSubmit_CaseInsensitiveEmail(t *testing.T) {
	handler, fx, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	if err := users.SetPasswordHash(ctx, user.ID, string(hash)); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}

	rec := postLogin(t, handler, "ADA@Example.COM", "correct horse")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}
