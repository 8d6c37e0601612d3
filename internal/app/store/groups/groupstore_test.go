package groupstore_test

import (
	"testing"

	groupstore "github.com/scribeworks/scribehub/internal/app/store/groups"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"github.com/scribeworks/scribehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")

	group := models.Group{
		WorkspaceID: ws.ID,
		Name:        "Test Group",
		Description: "A test group description",
	}

	created, err := store.Create(ctx, group)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.Status != "active" {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	// Kind defaults to regular
	if created.Kind != models.GroupKindRegular {
		t.Errorf("expected kind %q, got %q", models.GroupKindRegular, created.Kind)
	}
	if created.WorkspaceID != ws.ID {
		t.Errorf("WorkspaceID: got %v, want %v", created.WorkspaceID, ws.ID)
	}
}

func TestStore_Create_InvalidKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")

	_, err := store.Create(ctx, models.Group{
		WorkspaceID: ws.ID,
		Name:        "Bad Kind",
		Kind:        "secret",
	})
	if err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestStore_Create_DuplicateNameInSameWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Group{WorkspaceID: ws.ID, Name: "Duplicate Group"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Group{WorkspaceID: ws.ID, Name: "Duplicate Group"})
	if err != groupstore.ErrDuplicateGroupName {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}
}

func TestStore_Create_SameNameDifferentWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws1 := fixtures.CreateWorkspace(ctx, "Workspace One", "one")
	ws2 := fixtures.CreateWorkspace(ctx, "Workspace Two", "two")
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Group{WorkspaceID: ws1.ID, Name: "Shared Name"}); err != nil {
		t.Fatalf("Create in ws1 failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Group{WorkspaceID: ws2.ID, Name: "Shared Name"}); err != nil {
		t.Errorf("Create in ws2 failed: %v", err)
	}
}

func TestStore_Delete_CascadesMemberships(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	group := fixtures.CreateGroup(ctx, ws.ID, "Doomed Group", models.GroupKindRegular)
	user := fixtures.CreateUser(ctx, "Test Member", "member@example.com")
	fixtures.CreateGroupMembership(ctx, ws.ID, group.ID, user.ID)

	deleted, err := store.Delete(ctx, group.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}

	// Membership rows went with the group
	count, err := db.Collection("group_memberships").CountDocuments(ctx, bson.M{"group_id": group.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 memberships after group delete, got %d", count)
	}
}

func TestStore_ListByWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := fixtures.CreateWorkspace(ctx, "Test Workspace", "test")
	other := fixtures.CreateWorkspace(ctx, "Other Workspace", "other")

	fixtures.CreateGroup(ctx, ws.ID, "Bravo", models.GroupKindRegular)
	fixtures.CreateGroup(ctx, ws.ID, "Alpha", models.GroupKindRegular)
	fixtures.CreateGroup(ctx, other.ID, "Elsewhere", models.GroupKindRegular)

	groups, err := store.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Sorted by folded name
	if groups[0].Name != "Alpha" || groups[1].Name != "Bravo" {
		t.Errorf("unexpected order: %q, %q", groups[0].Name, groups[1].Name)
	}
}
