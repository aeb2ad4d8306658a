package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// GetByEmail includes the password hash.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName models.FullName, phone string) (*models.User, error)
	UpdateSocketID(ctx context.Context, id primitive.ObjectID, socketID string) error
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	AddRide(ctx context.Context, id, rideID primitive.ObjectID) error
}

type FrontendLogRepository interface {
	Create(ctx context.Context, entry *models.FrontendLog) error
}
