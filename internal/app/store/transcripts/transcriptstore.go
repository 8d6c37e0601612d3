// internal/app/store/transcripts/transcriptstore.go
package transcriptstore

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

type Store struct {
	configs *mongo.Collection
	history *mongo.Collection
}

var (
	ErrNotFound         = errors.New("transcript configuration not found")
	ErrDuplicateHistory = errors.New("this file already has a history entry")
	errBadProvider      = errors.New(`provider must be "gong", "modjo", or "google_meet"`)
)

func New(db *mongo.Database) *Store {
	return &Store{
		configs: db.Collection("transcript_configurations"),
		history: db.Collection("transcript_histories"),
	}
}

// CreateConfiguration inserts a transcript configuration for a user.
func (s *Store) CreateConfiguration(ctx context.Context, cfg models.TranscriptConfiguration) (models.TranscriptConfiguration, error) {
	switch cfg.Provider {
	case models.ProviderGong, models.ProviderModjo, models.ProviderGoogleMeet:
	default:
		return models.TranscriptConfiguration{}, errBadProvider
	}
	now := time.Now().UTC()
	cfg.ID = primitive.NewObjectID()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	if _, err := s.configs.InsertOne(ctx, cfg); err != nil {
		return models.TranscriptConfiguration{}, err
	}
	return cfg, nil
}

// GetConfiguration loads a configuration by ID.
func (s *Store) GetConfiguration(ctx context.Context, id primitive.ObjectID) (models.TranscriptConfiguration, error) {
	var cfg models.TranscriptConfiguration
	err := s.configs.FindOne(ctx, bson.M{"_id": id}).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.TranscriptConfiguration{}, ErrNotFound
		}
		return models.TranscriptConfiguration{}, err
	}
	return cfg, nil
}

// GetConfigurationByUser loads the configuration a user owns in a
// workspace, or ErrNotFound.
func (s *Store) GetConfigurationByUser(ctx context.Context, wsID, userID primitive.ObjectID) (models.TranscriptConfiguration, error) {
	var cfg models.TranscriptConfiguration
	err := s.configs.FindOne(ctx, bson.M{"workspace_id": wsID, "user_id": userID}).Decode(&cfg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.TranscriptConfiguration{}, ErrNotFound
		}
		return models.TranscriptConfiguration{}, err
	}
	return cfg, nil
}

// ListActiveConfigurations returns every configuration with is_active set.
// The background worker iterates this list on each tick.
func (s *Store) ListActiveConfigurations(ctx context.Context) ([]models.TranscriptConfiguration, error) {
	cur, err := s.configs.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var configs []models.TranscriptConfiguration
	if err := cur.All(ctx, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateConfiguration updates the mutable settings of a configuration.
func (s *Store) UpdateConfiguration(ctx context.Context, id primitive.ObjectID, agentID string, isActive, emailOnProcess bool) error {
	set := bson.M{
		"is_active":        isActive,
		"email_on_process": emailOnProcess,
		"updated_at":       time.Now().UTC(),
	}
	if agentID != "" {
		set["agent_configuration_id"] = agentID
	}
	res, err := s.configs.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProvider switches a configuration to a different provider.
// Credentials are only overwritten when a new value is supplied, so a
// form resubmit without secrets keeps the stored ones.
func (s *Store) UpdateProvider(ctx context.Context, id primitive.ObjectID, provider, apiKey, refreshToken string) error {
	switch provider {
	case models.ProviderGong, models.ProviderModjo, models.ProviderGoogleMeet:
	default:
		return errBadProvider
	}
	set := bson.M{
		"provider":   provider,
		"updated_at": time.Now().UTC(),
	}
	if apiKey != "" {
		set["api_key"] = apiKey
	}
	if refreshToken != "" {
		set["refresh_token"] = refreshToken
	}
	res, err := s.configs.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConfiguration removes a configuration and its history entries.
// History rows go first so a partial failure never orphans them.
func (s *Store) DeleteConfiguration(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.history.DeleteMany(ctx, bson.M{"configuration_id": id}); err != nil {
		return err
	}
	res, err := s.configs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetHistoryByFileID returns the history row for (configurationID, fileID),
// or mongo.ErrNoDocuments when the file has not been processed.
func (s *Store) GetHistoryByFileID(ctx context.Context, configurationID primitive.ObjectID, fileID string) (models.TranscriptHistory, error) {
	var h models.TranscriptHistory
	err := s.history.FindOne(ctx, bson.M{"configuration_id": configurationID, "file_id": fileID}).Decode(&h)
	if err != nil {
		return models.TranscriptHistory{}, err
	}
	return h, nil
}

// RecordHistory inserts a processed-file entry. A second insert for the
// same (configuration_id, file_id) pair returns ErrDuplicateHistory.
func (s *Store) RecordHistory(ctx context.Context, h models.TranscriptHistory) (models.TranscriptHistory, error) {
	h.ID = primitive.NewObjectID()
	h.CreatedAt = time.Now().UTC()
	if _, err := s.history.InsertOne(ctx, h); err != nil {
		if wafflemongo.IsDup(err) {
			return models.TranscriptHistory{}, ErrDuplicateHistory
		}
		return models.TranscriptHistory{}, err
	}
	return h, nil
}

// ListRecentHistory returns up to limit history rows for a configuration,
// newest first.
func (s *Store) ListRecentHistory(ctx context.Context, configurationID primitive.ObjectID, limit int64) ([]models.TranscriptHistory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.history.Find(ctx, bson.M{"configuration_id": configurationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.TranscriptHistory
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureIndexes creates indexes for the transcript collections.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.configs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_tc_ws_user"),
	}); err != nil {
		return err
	}
	// The idempotency key for the pipeline: one history row per file.
	_, err := s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "configuration_id", Value: 1}, {Key: "file_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_th_config_file"),
	})
	return err
}
