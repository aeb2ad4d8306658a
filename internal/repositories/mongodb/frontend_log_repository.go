package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/pkg/database"
)

type frontendLogRepository struct {
	collection *mongo.Collection
}

func NewFrontendLogRepository(db *mongo.Database) interfaces.FrontendLogRepository {
	return &frontendLogRepository{
		collection: db.Collection(database.CollectionFrontendLogs),
	}
}

func (r *frontendLogRepository) Create(ctx context.Context, entry *models.FrontendLog) error {
	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to store frontend log: %w", err)
	}
	return nil
}
