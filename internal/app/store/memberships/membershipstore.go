// internal/app/store/memberships/membershipstore.go
package membershipstore

// Membership validity is time-bounded: a row is active when
// start_at <= now and end_at is unset or in the future. Removal sets
// end_at rather than deleting, so history survives revocation.

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
	c      *mongo.Collection
	users  *mongo.Collection
	groups *mongo.Collection
	wsmem  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("group_memberships"),
		users:  db.Collection("users"),
		groups: db.Collection("groups"),
		wsmem:  db.Collection("workspace_memberships"),
	}
}

// AddMember precondition failures. Each violation is reported as its own
// sentinel so callers can map them to distinct API error codes instead of
// catching a generic failure.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserNotWorkspaceMember = errors.New("user does not have an active membership in this workspace")
	ErrGroupNotRegular        = errors.New("only regular groups can be edited")
	ErrAlreadyGroupMember     = errors.New("user already has an active membership in this group")
)

// activeFilter matches memberships valid at time now.
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

// AddMember creates an active membership after enforcing the group-edit
// invariants:
//   - the user must exist                       -> ErrUserNotFound
//   - the user must be an active workspace member -> ErrUserNotWorkspaceMember
//   - the group must be of kind "regular"         -> ErrGroupNotRegular
//   - no unexpired membership may already exist   -> ErrAlreadyGroupMember
func (s *Store) AddMember(ctx context.Context, wsID, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	now := time.Now().UTC()

	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.GroupMembership{}, ErrUserNotFound
		}
		return models.GroupMembership{}, err
	}

	wsFilter := activeFilter(now)
	wsFilter["workspace_id"] = wsID
	wsFilter["user_id"] = userID
	if err := s.wsmem.FindOne(ctx, wsFilter).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.GroupMembership{}, ErrUserNotWorkspaceMember
		}
		return models.GroupMembership{}, err
	}

	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
		return models.GroupMembership{}, err
	}
	if !g.IsRegular() {
		return models.GroupMembership{}, ErrGroupNotRegular
	}

	curFilter := activeFilter(now)
	curFilter["group_id"] = groupID
	curFilter["user_id"] = userID
	if err := s.c.FindOne(ctx, curFilter).Err(); err != mongo.ErrNoDocuments {
		if err == nil {
			return models.GroupMembership{}, ErrAlreadyGroupMember
		}
		return models.GroupMembership{}, err
	}

	m := models.GroupMembership{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		GroupID:     groupID,
		UserID:      userID,
		StartAt:     now,
		CreatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// RemoveMember ends the user's active membership in the group by setting
// end_at to now. It is a no-op when there is no active membership.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := activeFilter(now)
	filter["group_id"] = groupID
	filter["user_id"] = userID
	_, err := s.c.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"end_at": now}})
	return err
}

// GetActive returns the user's active membership in the group, or
// mongo.ErrNoDocuments when none exists.
func (s *Store) GetActive(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	filter := activeFilter(time.Now().UTC())
	filter["group_id"] = groupID
	filter["user_id"] = userID

	var m models.GroupMembership
	if err := s.c.FindOne(ctx, filter).Decode(&m); err != nil {
		return models.GroupMembership{}, err
	}
	return m, nil
}

// ListActiveByGroup returns all currently-active memberships of a group.
func (s *Store) ListActiveByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	filter := activeFilter(time.Now().UTC())
	filter["group_id"] = groupID

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.GroupMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountActiveByGroup returns the count of active memberships for a group.
func (s *Store) CountActiveByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	filter := activeFilter(time.Now().UTC())
	filter["group_id"] = groupID
	return s.c.CountDocuments(ctx, filter)
}

// DeleteByGroup removes all membership rows for a group (used when the
// group itself is deleted). Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all membership rows for a workspace.
func (s *Store) DeleteByWorkspace(ctx context.Context, wsID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": wsID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes all membership rows for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the group_memberships collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "start_at", Value: 1}},
			Options: options.Index().SetName("idx_gm_group_user_start"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}},
			Options: options.Index().SetName("idx_gm_workspace"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_gm_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
