// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/scribeworks/scribehub/internal/app/system/status"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c           *mongo.Collection
	memberships *mongo.Collection
}

var (
	ErrDuplicateGroupName = errors.New("a group with this name already exists in the workspace")
	errBadKind            = errors.New(`kind must be "system", "regular", or "provisioned"`)
)

func New(db *mongo.Database) *Store {
	return &Store{
		c:           db.Collection("groups"),
		memberships: db.Collection("group_memberships"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	switch g.Kind {
	case models.GroupKindSystem, models.GroupKindRegular, models.GroupKindProvisioned:
	case "":
		g.Kind = models.GroupKindRegular
	default:
		return models.Group{}, errBadKind
	}
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	if g.Status == "" {
		g.Status = status.Active
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc, stat string) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if strings.TrimSpace(name) != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	// Description can be cleared (set to empty)
	set["description"] = desc
	if stat != "" {
		set["status"] = stat
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	return nil
}

// Delete removes a group by ID after deleting its membership rows.
// Children go first so a partial failure never leaves memberships pointing
// at a missing group. Returns the number of group documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, err := s.memberships.DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
		return 0, err
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByWorkspace removes all groups (and their memberships) belonging to
// a workspace. Returns the number of group documents deleted.
func (s *Store) DeleteByWorkspace(ctx context.Context, wsID primitive.ObjectID) (int64, error) {
	if _, err := s.memberships.DeleteMany(ctx, bson.M{"workspace_id": wsID}); err != nil {
		return 0, err
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"workspace_id": wsID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByWorkspace returns all groups in a workspace sorted by folded name.
func (s *Store) ListByWorkspace(ctx context.Context, wsID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"workspace_id": wsID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CountByWorkspace returns the number of groups in a workspace.
func (s *Store) CountByWorkspace(ctx context.Context, wsID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"workspace_id": wsID})
}

// EnsureIndexes creates indexes for the groups collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Group names are unique per workspace (case-insensitive)
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_group_ws_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().SetName("idx_group_ws_kind"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
