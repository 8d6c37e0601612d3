package membershipstore_test

import (
	"errors"
	"testing"
	"time"

	membershipstore "github.com/scribeworks/scribehub/internal/app/store/memberships"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"github.com/scribeworks/scribehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_AddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Test Member", "member@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)

	m, err := store.AddMember(ctx, ws.ID, group.ID, user.ID)
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if m.EndAt != nil {
		t.Error("expected new membership to have no end_at")
	}
	if m.StartAt.IsZero() {
		t.Error("expected StartAt to be set")
	}

	// Exactly one active membership row
	count, err := db.Collection("group_memberships").CountDocuments(ctx, bson.M{
		"group_id": group.ID,
		"user_id":  user.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 membership, got %d", count)
	}
}

func TestStore_AddMember_UserNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)

	_, err := store.AddMember(ctx, ws.ID, group.ID, primitive.NewObjectID())
	if !errors.Is(err, membershipstore.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_AddMember_NotWorkspaceMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	_, err := store.AddMember(ctx, ws.ID, group.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrUserNotWorkspaceMember) {
		t.Errorf("expected ErrUserNotWorkspaceMember, got %v", err)
	}
}

func TestStore_AddMember_RevokedWorkspaceMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Former Member", "former@example.com")
	wm := fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)

	// Expire the workspace membership
	past := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Collection("workspace_memberships").UpdateByID(ctx, wm.ID,
		bson.M{"$set": bson.M{"end_at": past}}); err != nil {
		t.Fatalf("failed to expire workspace membership: %v", err)
	}

	_, err := store.AddMember(ctx, ws.ID, group.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrUserNotWorkspaceMember) {
		t.Errorf("expected ErrUserNotWorkspaceMember, got %v", err)
	}
}

func TestStore_AddMember_GroupNotRegular(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	user := fixtures.CreateUser(ctx, "Test Member", "member@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)

	for _, kind := range []string{models.GroupKindSystem, models.GroupKindProvisioned} {
		group := fixtures.CreateGroup(ctx, ws.ID, "Group "+kind, kind)
		_, err := store.AddMember(ctx, ws.ID, group.ID, user.ID)
		if !errors.Is(err, membershipstore.ErrGroupNotRegular) {
			t.Errorf("kind %q: expected ErrGroupNotRegular, got %v", kind, err)
		}
	}
}

func TestStore_AddMember_AlreadyMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Test Member", "member@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)

	if _, err := store.AddMember(ctx, ws.ID, group.ID, user.ID); err != nil {
		t.Fatalf("first AddMember failed: %v", err)
	}

	_, err := store.AddMember(ctx, ws.ID, group.ID, user.ID)
	if !errors.Is(err, membershipstore.ErrAlreadyGroupMember) {
		t.Errorf("expected ErrAlreadyGroupMember, got %v", err)
	}
}

func TestStore_AddMember_AfterExpiredMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Returning Member", "returning@example.com")
	fixtures.CreateWorkspaceMembership(ctx, ws.ID, user.ID, models.WorkspaceRoleUser)

	// An old, already-ended membership must not block a new one.
	old := fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)
	fixtures.EndGroupMembership(ctx, old.ID, time.Now().UTC().Add(-time.Hour))

	if _, err := store.AddMember(ctx, ws.ID, group.ID, user.ID); err != nil {
		t.Fatalf("AddMember after expiry failed: %v", err)
	}

	count, err := db.Collection("group_memberships").CountDocuments(ctx, bson.M{
		"group_id": group.ID,
		"user_id":  user.ID,
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 membership rows (one expired, one active), got %d", count)
	}
}

func TestStore_RemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Test Member", "member@example.com")
	fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)

	if err := store.RemoveMember(ctx, group.ID, user.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	// Row survives with end_at set (soft revocation)
	var m models.GroupMembership
	err := db.Collection("group_memberships").FindOne(ctx, bson.M{
		"group_id": group.ID,
		"user_id":  user.ID,
	}).Decode(&m)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if m.EndAt == nil {
		t.Error("expected end_at to be set after RemoveMember")
	}

	if _, err := store.GetActive(ctx, group.ID, user.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected no active membership after remove, got %v", err)
	}
}

func TestStore_ListActiveByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)

	active := fixtures.CreateUser(ctx, "Active", "active@example.com")
	fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, active.ID)

	expired := fixtures.CreateUser(ctx, "Expired", "expired@example.com")
	m := fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, expired.ID)
	fixtures.EndGroupMembership(ctx, m.ID, time.Now().UTC().Add(-time.Minute))

	memberships, err := store.ListActiveByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListActiveByGroup failed: %v", err)
	}
	if len(memberships) != 1 {
		t.Fatalf("expected 1 active membership, got %d", len(memberships))
	}
	if memberships[0].UserID != active.ID {
		t.Errorf("UserID: got %v, want %v", memberships[0].UserID, active.ID)
	}
}

func TestStore_DeleteByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Test Group", models.GroupKindRegular)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		u := fixtures.CreateUser(ctx, "User "+email, email)
		fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, u.ID)
	}

	deleted, err := store.DeleteByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("DeleteByGroup failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}
}
