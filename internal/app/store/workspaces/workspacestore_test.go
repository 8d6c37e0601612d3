package workspacestore_test

import (
	"testing"

	workspacestore "github.com/scribeworks/scribehub/internal/app/store/workspaces"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"github.com/scribeworks/scribehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws, err := store.Create(ctx, models.Workspace{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ws.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if ws.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if ws.Status != "active" {
		t.Errorf("expected status 'active', got %q", ws.Status)
	}
}

func TestStore_Create_DuplicateSubdomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Workspace{Name: "Acme", Subdomain: "acme"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Workspace{Name: "Acme Two", Subdomain: "acme"})
	if err != workspacestore.ErrDuplicateSubdomain {
		t.Errorf("expected ErrDuplicateSubdomain, got %v", err)
	}
}

func TestStore_GetBySubdomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workspacestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Workspace{Name: "Acme", Subdomain: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetBySubdomain(ctx, "acme")
	if err != nil {
		t.Fatalf("GetBySubdomain failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID: got %v, want %v", got.ID, created.ID)
	}

	if _, err := store.GetBySubdomain(ctx, "missing"); err != workspacestore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
