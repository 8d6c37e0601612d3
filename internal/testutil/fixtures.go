package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateWorkspace creates a test workspace with the given name.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name, subdomain string) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Subdomain: subdomain,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("workspaces").InsertOne(ctx, ws); err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}
	return ws
}

// CreateUser creates a test user.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateWorkspaceMembership adds an active workspace membership for the user.
func (f *Fixtures) CreateWorkspaceMembership(ctx context.Context, wsID, userID primitive.ObjectID, role string) models.WorkspaceMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.WorkspaceMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		UserID:      userID,
		Role:        role,
		StartAt:     now,
		CreatedAt:   now,
	}

	if _, err := f.db.Collection("workspace_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test workspace membership: %v", err)
	}
	return m
}

// CreateGroup creates a test group of the given kind in the workspace.
func (f *Fixtures) CreateGroup(ctx context.Context, wsID primitive.ObjectID, name, kind string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		Name:        name,
		NameCI:      text.Fold(name),
		Kind:        kind,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateGroupMembership creates an active membership linking a user to a group.
func (f *Fixtures) CreateGroupMembership(ctx context.Context, wsID, groupID, userID primitive.ObjectID) models.GroupMembership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.GroupMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		GroupID:     groupID,
		UserID:      userID,
		StartAt:     now,
		CreatedAt:   now,
	}

	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test group membership: %v", err)
	}
	return m
}

// EndGroupMembership expires the membership as of the given time.
func (f *Fixtures) EndGroupMembership(ctx context.Context, id primitive.ObjectID, endAt time.Time) {
	f.t.Helper()

	res := f.db.Collection("group_memberships").FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"end_at": endAt}})
	if res.Err() != nil {
		f.t.Fatalf("failed to end test group membership: %v", res.Err())
	}
}

// CreateTranscriptConfiguration creates an active transcript configuration.
func (f *Fixtures) CreateTranscriptConfiguration(ctx context.Context, wsID, userID primitive.ObjectID, provider, agentID string) models.TranscriptConfiguration {
	f.t.Helper()

	now := time.Now().UTC()
	cfg := models.TranscriptConfiguration{
		ID:                   primitive.NewObjectID(),
		WorkspaceID:          wsID,
		UserID:               userID,
		Provider:             provider,
		AgentConfigurationID: agentID,
		IsActive:             true,
		EmailOnProcess:       true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if _, err := f.db.Collection("transcript_configurations").InsertOne(ctx, cfg); err != nil {
		f.t.Fatalf("failed to create test transcript configuration: %v", err)
	}
	return cfg
}
