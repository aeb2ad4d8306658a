package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/pkg/database"
)

var withoutOTP = bson.M{"otp": 0}

type rideRepository struct {
	collection *mongo.Collection
}

func NewRideRepository(db *mongo.Database) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection(database.CollectionRides),
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	now := time.Now()
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = now
	ride.UpdatedAt = now
	if ride.Messages == nil {
		ride.Messages = []models.ChatMessage{}
	}

	if _, err := r.collection.InsertOne(ctx, ride); err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutOTP))
}

func (r *rideRepository) GetByIDWithOTP(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne())
}

func (r *rideRepository) GetByIDAndRider(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	return r.findOne(ctx, bson.M{"_id": id, "rider": riderID}, options.FindOne().SetProjection(withoutOTP))
}

func (r *rideRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Ride, error) {
	var ride models.Ride
	err := r.collection.FindOne(ctx, filter, opts).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return &ride, nil
}

// Accept binds riderID to a pending ride. The status predicate makes it the
// single point where two riders can race, and only one can win. The winner
// gets the ride back with its otp so the requester can be told without a
// second read.
func (r *rideRepository) Accept(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()
	return r.transitionWithProjection(ctx,
		bson.M{"_id": id, "status": models.RideStatusPending},
		bson.M{"status": models.RideStatusAccepted, "rider": riderID, "acceptedAt": now, "updatedAt": now},
		nil,
	)
}

func (r *rideRepository) Start(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()
	return r.transition(ctx,
		bson.M{"_id": id, "status": models.RideStatusAccepted},
		bson.M{"status": models.RideStatusOngoing, "startedAt": now, "updatedAt": now},
	)
}

func (r *rideRepository) Complete(ctx context.Context, id, riderID primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()
	return r.transition(ctx,
		bson.M{"_id": id, "rider": riderID, "status": models.RideStatusOngoing},
		bson.M{"status": models.RideStatusCompleted, "completedAt": now, "updatedAt": now},
	)
}

// Cancel is unconditional on the prior status.
func (r *rideRepository) Cancel(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	now := time.Now()
	ride, err := r.transition(ctx,
		bson.M{"_id": id},
		bson.M{"status": models.RideStatusCancelled, "cancelledAt": now, "updatedAt": now},
	)
	if errors.Is(err, interfaces.ErrNotModified) {
		return nil, interfaces.ErrNotFound
	}
	return ride, err
}

func (r *rideRepository) transition(ctx context.Context, filter, set bson.M) (*models.Ride, error) {
	return r.transitionWithProjection(ctx, filter, set, withoutOTP)
}

func (r *rideRepository) transitionWithProjection(ctx context.Context, filter, set, projection bson.M) (*models.Ride, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if projection != nil {
		opts.SetProjection(projection)
	}

	var ride models.Ride
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&ride)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotModified
		}
		return nil, fmt.Errorf("failed to update ride status: %w", err)
	}
	return &ride, nil
}

// AppendMessage pushes onto the chat log; existing entries are never touched.
func (r *rideRepository) AppendMessage(ctx context.Context, id primitive.ObjectID, message models.ChatMessage) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *rideRepository) FindActiveByRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error) {
	filter := bson.M{
		"rider":  riderID,
		"status": bson.M{"$in": []models.RideStatus{models.RideStatusAccepted, models.RideStatusOngoing}},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(withoutOTP))
	if err != nil {
		return nil, fmt.Errorf("failed to find active rides: %w", err)
	}
	defer cursor.Close(ctx)

	rides := make([]*models.Ride, 0)
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode active rides: %w", err)
	}
	return rides, nil
}
