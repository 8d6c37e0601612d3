// internal/app/store/connectorstate/microsoftstore.go
package connectorstate

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/scribeworks/scribehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the four collections that make up the Microsoft connector's
// sync state. Roots, deltas, and nodes are children of a configuration and
// are always removed with it.
type Store struct {
	configs *mongo.Collection
	roots   *mongo.Collection
	deltas  *mongo.Collection
	nodes   *mongo.Collection
}

var (
	ErrDuplicateConnector = errors.New("a configuration for this connector already exists")
	ErrNotFound           = errors.New("configuration not found")
)

func New(db *mongo.Database) *Store {
	return &Store{
		configs: db.Collection("microsoft_configurations"),
		roots:   db.Collection("microsoft_roots"),
		deltas:  db.Collection("microsoft_deltas"),
		nodes:   db.Collection("microsoft_nodes"),
	}
}

// CreateConfiguration inserts connector configuration state.
func (s *Store) CreateConfiguration(ctx context.Context, cfg models.MicrosoftConfiguration) (models.MicrosoftConfiguration, error) {
	now := time.Now().UTC()
	cfg.ID = primitive.NewObjectID()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	_, err := s.configs.InsertOne(ctx, cfg)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.MicrosoftConfiguration{}, ErrDuplicateConnector
		}
		return models.MicrosoftConfiguration{}, err
	}
	return cfg, nil
}

// GetConfiguration loads the configuration for a connector.
func (s *Store) GetConfiguration(ctx context.Context, connectorID string) (models.MicrosoftConfiguration, error) {
	var cfg models.MicrosoftConfiguration
	err := s.configs.FindOne(ctx, bson.M{"connector_id": connectorID}).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.MicrosoftConfiguration{}, ErrNotFound
		}
		return models.MicrosoftConfiguration{}, err
	}
	return cfg, nil
}

// UpdateFlags updates the sync feature flags on a configuration.
func (s *Store) UpdateFlags(ctx context.Context, connectorID string, pdf, csv, largeFiles bool) error {
	_, err := s.configs.UpdateOne(ctx, bson.M{"connector_id": connectorID}, bson.M{"$set": bson.M{
		"pdf_enabled":         pdf,
		"csv_enabled":         csv,
		"large_files_enabled": largeFiles,
		"updated_at":          time.Now().UTC(),
	}})
	return err
}

// DeleteConfiguration removes all state for a connector. Children are
// deleted first (nodes, then deltas, then roots) and the configuration row
// last, so an interrupted delete can be re-run and never leaves children
// under a missing parent.
func (s *Store) DeleteConfiguration(ctx context.Context, connectorID string) error {
	filter := bson.M{"connector_id": connectorID}
	if _, err := s.nodes.DeleteMany(ctx, filter); err != nil {
		return err
	}
	if _, err := s.deltas.DeleteMany(ctx, filter); err != nil {
		return err
	}
	if _, err := s.roots.DeleteMany(ctx, filter); err != nil {
		return err
	}
	res, err := s.configs.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRoots replaces the configured sync roots for a connector.
func (s *Store) SetRoots(ctx context.Context, connectorID string, roots []models.MicrosoftRoot) error {
	if _, err := s.roots.DeleteMany(ctx, bson.M{"connector_id": connectorID}); err != nil {
		return err
	}
	if len(roots) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(roots))
	for _, r := range roots {
		r.ID = primitive.NewObjectID()
		r.ConnectorID = connectorID
		r.CreatedAt = now
		docs = append(docs, r)
	}
	_, err := s.roots.InsertMany(ctx, docs)
	return err
}

// ListRoots returns the sync roots for a connector.
func (s *Store) ListRoots(ctx context.Context, connectorID string) ([]models.MicrosoftRoot, error) {
	cur, err := s.roots.Find(ctx, bson.M{"connector_id": connectorID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roots []models.MicrosoftRoot
	if err := cur.All(ctx, &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// UpsertDelta stores or refreshes the delta link for a drive.
func (s *Store) UpsertDelta(ctx context.Context, connectorID, driveID, deltaLink string) error {
	now := time.Now().UTC()
	opts := options.Update().SetUpsert(true)
	_, err := s.deltas.UpdateOne(ctx,
		bson.M{"connector_id": connectorID, "drive_id": driveID},
		bson.M{
			"$set":         bson.M{"delta_link": deltaLink, "updated_at": now},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
		}, opts)
	return err
}

// GetDelta returns the stored delta link for a drive, or
// mongo.ErrNoDocuments when none exists.
func (s *Store) GetDelta(ctx context.Context, connectorID, driveID string) (models.MicrosoftDelta, error) {
	var d models.MicrosoftDelta
	if err := s.deltas.FindOne(ctx, bson.M{"connector_id": connectorID, "drive_id": driveID}).Decode(&d); err != nil {
		return models.MicrosoftDelta{}, err
	}
	return d, nil
}

// UpsertNodes writes a batch of synced drive items, keyed by
// (connector_id, internal_id).
func (s *Store) UpsertNodes(ctx context.Context, connectorID string, nodes []models.MicrosoftNode) error {
	if len(nodes) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(nodes))
	for _, n := range nodes {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"connector_id": connectorID, "internal_id": n.InternalID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"parent_internal_id": n.ParentInternalID,
					"name":               n.Name,
					"mime_type":          n.MimeType,
					"last_seen_ts":       n.LastSeenTs,
					"updated_at":         now,
				},
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
			}).
			SetUpsert(true))
	}
	_, err := s.nodes.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// GetNodesByInternalIDs fetches tracked nodes for the given internal IDs.
func (s *Store) GetNodesByInternalIDs(ctx context.Context, connectorID string, internalIDs []string) ([]models.MicrosoftNode, error) {
	if len(internalIDs) == 0 {
		return nil, nil
	}
	cur, err := s.nodes.Find(ctx, bson.M{
		"connector_id": connectorID,
		"internal_id":  bson.M{"$in": internalIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var nodes []models.MicrosoftNode
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// CountNodes returns the number of tracked nodes for a connector.
func (s *Store) CountNodes(ctx context.Context, connectorID string) (int64, error) {
	return s.nodes.CountDocuments(ctx, bson.M{"connector_id": connectorID})
}

// EnsureIndexes creates indexes for the connector state collections.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.configs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "connector_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_msconfig_connector"),
	}); err != nil {
		return err
	}
	if _, err := s.deltas.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "connector_id", Value: 1}, {Key: "drive_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_msdelta_connector_drive"),
	}); err != nil {
		return err
	}
	_, err := s.nodes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "connector_id", Value: 1}, {Key: "internal_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_msnode_connector_internal"),
	})
	return err
}
