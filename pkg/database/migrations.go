package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quickride/pkg/logger"
)

type Migration struct {
	Version     int
	Description string
	Collection  string
	Indexes     []mongo.IndexModel
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

// Up applies every migration newer than the recorded version.
func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log := m.logger.WithFields(map[string]interface{}{
			"version":    migration.Version,
			"collection": migration.Collection,
		})
		log.Info("Running migration: " + migration.Description)

		if _, err := m.db.Collection(migration.Collection).Indexes().CreateMany(ctx, migration.Indexes); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}

		log.Info("Migration completed")
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(CollectionMigrations).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(CollectionMigrations).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users indexes",
			Collection:  CollectionUsers,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
				{Keys: bson.D{{Key: "socketId", Value: 1}}, Options: options.Index().SetSparse(true)},
			},
		},
		{
			Version:     2,
			Description: "Create riders indexes",
			Collection:  CollectionRiders,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
				{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
				{Keys: bson.D{{Key: "vehicle.type", Value: 1}}},
			},
		},
		{
			Version:     3,
			Description: "Create rides indexes",
			Collection:  CollectionRides,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
				{Keys: bson.D{{Key: "rider", Value: 1}, {Key: "status", Value: 1}}},
				{Keys: bson.D{{Key: "status", Value: 1}}},
			},
		},
		{
			Version:     4,
			Description: "Create frontend logs indexes",
			Collection:  CollectionFrontendLogs,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			},
		},
	}
}
