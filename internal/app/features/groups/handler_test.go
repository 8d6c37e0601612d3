package groups_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/scribeworks/scribehub/internal/app/features/groups"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"github.com/scribeworks/scribehub/internal/testutil"
)

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return groups.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

// postAddMember posts the add-member form as a JSON API call so the
// response body carries the machine-readable error code.
func postAddMember(h *groups.Handler, groupID primitive.ObjectID, email string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}}
	req := httptest.NewRequest("POST", "/groups/"+groupID.Hex()+"/members",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req = testutil.WithChiURLParam(req, "groupID", groupID.Hex())

	rec := httptest.NewRecorder()
	h.HandleAddMember(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (body %q)", err, rec.Body.String())
	}
	return body.Error.Code
}

func TestHandleAddMember_Success(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)

	rec := postAddMember(h, group.ID, "ada@example.com")

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	count, err := fixtures.DB().Collection("group_memberships").CountDocuments(ctx,
		bson.M{"group_id": group.ID, "user_id": user.ID})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if count != 1 {
		t.Errorf("membership rows: got %d, want 1", count)
	}
}

func TestHandleAddMember_UserNotFound(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)

	rec := postAddMember(h, group.ID, "nobody@example.com")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != "user_not_found" {
		t.Errorf("error code: got %q, want %q", code, "user_not_found")
	}
}

func TestHandleAddMember_NotWorkspaceMember(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)

	rec := postAddMember(h, group.ID, "ada@example.com")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if code := errorCode(t, rec); code != "user_not_workspace_member" {
		t.Errorf("error code: got %q, want %q", code, "user_not_workspace_member")
	}
}

func TestHandleAddMember_GroupNotRegular(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)
	group := fixtures.CreateGroup(ctx, ws.ID, "Everyone", models.GroupKindSystem)

	rec := postAddMember(h, group.ID, "ada@example.com")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if code := errorCode(t, rec); code != "group_not_regular" {
		t.Errorf("error code: got %q, want %q", code, "group_not_regular")
	}
}

func TestHandleAddMember_AlreadyMember(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)
	fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)

	rec := postAddMember(h, group.ID, "ada@example.com")

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	if code := errorCode(t, rec); code != "user_already_group_member" {
		t.Errorf("error code: got %q, want %q", code, "user_already_group_member")
	}
}

func TestHandleRemoveMember_EndsMembership(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)
	m := fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)

	req := httptest.NewRequest("POST",
		"/groups/"+group.ID.Hex()+"/members/"+user.ID.Hex()+"/remove", nil)
	req.Header.Set("Accept", "application/json")
	req = testutil.WithChiURLParam(req, "groupID", group.ID.Hex())
	req = testutil.WithChiURLParam(req, "userID", user.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleRemoveMember(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// The row survives with end_at set, it is not deleted.
	var row models.GroupMembership
	if err := fixtures.DB().Collection("group_memberships").
		FindOne(ctx, bson.M{"_id": m.ID}).Decode(&row); err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if row.EndAt == nil {
		t.Error("expected end_at to be set after removal")
	}
}

func TestHandleDelete_CascadesMemberships(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx := context.Background()

	ws := fixtures.CreateWorkspace(ctx, "Acme", "acme")
	user := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@example.com")
	group := fixtures.CreateGroup(ctx, ws.ID, "Engineering", models.GroupKindRegular)
	fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)

	req := httptest.NewRequest("POST", "/groups/"+group.ID.Hex()+"/delete", nil)
	req.Header.Set("Accept", "application/json")
	req = testutil.WithChiURLParam(req, "groupID", group.ID.Hex())

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	groupCount, err := fixtures.DB().Collection("groups").CountDocuments(ctx, bson.M{"_id": group.ID})
	if err != nil {
		t.Fatalf("count groups: %v", err)
	}
	if groupCount != 0 {
		t.Errorf("group rows after delete: got %d, want 0", groupCount)
	}

	memberCount, err := fixtures.DB().Collection("group_memberships").
		CountDocuments(ctx, bson.M{"group_id": group.ID})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if memberCount != 0 {
		t.Errorf("membership rows after delete: got %d, want 0", memberCount)
	}
}
