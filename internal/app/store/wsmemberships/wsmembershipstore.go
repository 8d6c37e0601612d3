// internal/app/store/wsmemberships/wsmembershipstore.go
package wsmembershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/scribeworks/scribehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	errBadRole       = errors.New(`role must be "admin", "builder", or "user"`)
	ErrAlreadyMember = errors.New("user already has an active membership in this workspace")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("workspace_memberships")}
}

func activeFilter(now time.Time) bson.M {
	return bson.M{
		"start_at": bson.M{"$lte": now},
		"$or": []bson.M{
			{"end_at": bson.M{"$exists": false}},
			{"end_at": nil},
			{"end_at": bson.M{"$gt": now}},
		},
	}
}

// Add creates an active workspace membership. A user holds at most one
// active membership per workspace; a second Add returns ErrAlreadyMember.
func (s *Store) Add(ctx context.Context, wsID, userID primitive.ObjectID, role string) (models.WorkspaceMembership, error) {
	switch role {
	case models.WorkspaceRoleAdmin, models.WorkspaceRoleBuilder, models.WorkspaceRoleUser:
	default:
		return models.WorkspaceMembership{}, errBadRole
	}

	now := time.Now().UTC()
	filter := activeFilter(now)
	filter["workspace_id"] = wsID
	filter["user_id"] = userID
	if err := s.c.FindOne(ctx, filter).Err(); err != mongo.ErrNoDocuments {
		if err == nil {
			return models.WorkspaceMembership{}, ErrAlreadyMember
		}
		return models.WorkspaceMembership{}, err
	}

	m := models.WorkspaceMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		UserID:      userID,
		Role:        role,
		StartAt:     now,
		CreatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.WorkspaceMembership{}, err
	}
	return m, nil
}

// GetActive returns the user's active membership in the workspace, or
// mongo.ErrNoDocuments when none exists.
func (s *Store) GetActive(ctx context.Context, wsID, userID primitive.ObjectID) (models.WorkspaceMembership, error) {
	filter := activeFilter(time.Now().UTC())
	filter["workspace_id"] = wsID
	filter["user_id"] = userID

	var m models.WorkspaceMembership
	if err := s.c.FindOne(ctx, filter).Decode(&m); err != nil {
		return models.WorkspaceMembership{}, err
	}
	return m, nil
}

// Revoke ends the user's active membership by setting end_at to now.
func (s *Store) Revoke(ctx context.Context, wsID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := activeFilter(now)
	filter["workspace_id"] = wsID
	filter["user_id"] = userID
	_, err := s.c.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"end_at": now}})
	return err
}

// ListActiveByWorkspace returns all active memberships in a workspace.
func (s *Store) ListActiveByWorkspace(ctx context.Context, wsID primitive.ObjectID) ([]models.WorkspaceMembership, error) {
	filter := activeFilter(time.Now().UTC())
	filter["workspace_id"] = wsID

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.WorkspaceMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListActiveByUser returns all of a user's active memberships, oldest
// workspace first.
func (s *Store) ListActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WorkspaceMembership, error) {
	filter := activeFilter(time.Now().UTC())
	filter["user_id"] = userID

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.WorkspaceMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// DeleteByWorkspace removes all membership rows for a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, wsID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": wsID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the workspace_memberships collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("idx_wm_ws_user_start"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
