package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/models"
)

// RideRepository reads never include the otp unless the method says so.
// Accept is the one transition that returns it. Every status change is
// conditional on the prior status and returns ErrNotModified when the ride
// was not in it.
type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	GetByIDWithOTP(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	GetByIDAndRider(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error)

	Accept(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error)
	Start(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Complete(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)

	AppendMessage(ctx context.Context, id primitive.ObjectID, message models.ChatMessage) error
	FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error)
}
