// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	connectorstore "github.com/scribeworks/scribehub/internal/app/store/connectorstate"
	groupstore "github.com/scribeworks/scribehub/internal/app/store/groups"
	membershipstore "github.com/scribeworks/scribehub/internal/app/store/memberships"
	transcriptstore "github.com/scribeworks/scribehub/internal/app/store/transcripts"
	userstore "github.com/scribeworks/scribehub/internal/app/store/users"
	workspacestore "github.com/scribeworks/scribehub/internal/app/store/workspaces"
	wsmembershipstore "github.com/scribeworks/scribehub/internal/app/store/wsmemberships"
)

// ConnectDB opens the MongoDB connection used by the app and verifies it
// with a ping before startup proceeds.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes each store depends on. It runs once at
// startup, after ConnectDB and before the HTTP handler is built.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"workspaces", workspacestore.New(db).EnsureIndexes},
		{"workspace_memberships", wsmembershipstore.New(db).EnsureIndexes},
		{"groups", groupstore.New(db).EnsureIndexes},
		{"group_memberships", membershipstore.New(db).EnsureIndexes},
		{"transcript_files", transcriptstore.New(db).EnsureIndexes},
		{"connector_state", connectorstore.New(db).EnsureIndexes},
	}

	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", e.name, err)
		}
		logger.Debug("indexes ensured", zap.String("collection", e.name))
	}

	return nil
}
