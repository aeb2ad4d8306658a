package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/models"
)

type RiderRepository interface {
	Create(ctx context.Context, rider *models.Rider) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error)
	// GetByEmail includes the password hash.
	GetByEmail(ctx context.Context, email string) (*models.Rider, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName models.FullName, phone string, vehicle *models.Vehicle) (*models.Rider, error)
	UpdateSocketID(ctx context.Context, id primitive.ObjectID, socketID string) error
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateLocation(ctx context.Context, id primitive.ObjectID, location *models.Location) error
	AddRide(ctx context.Context, id, rideID primitive.ObjectID) error

	// FindWithinRadius returns riders of the given vehicle class whose last
	// known location lies within radiusKM of (lat, lng). Order is unspecified.
	FindWithinRadius(ctx context.Context, lat, lng, radiusKM float64, vehicle models.VehicleType) ([]*models.Rider, error)
}
