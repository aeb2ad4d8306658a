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
	"quickride/internal/utils"
	"quickride/pkg/database"
)

var withoutPassword = bson.M{"password": 0}

type riderRepository struct {
	collection *mongo.Collection
}

func NewRiderRepository(db *mongo.Database) interfaces.RiderRepository {
	return &riderRepository{
		collection: db.Collection(database.CollectionRiders),
	}
}

func (r *riderRepository) Create(ctx context.Context, rider *models.Rider) error {
	now := time.Now()
	rider.ID = primitive.NewObjectID()
	rider.CreatedAt = now
	rider.UpdatedAt = now
	if rider.Status == "" {
		rider.Status = models.RiderStatusInactive
	}
	if rider.Rides == nil {
		rider.Rides = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, rider); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicate
		}
		return fmt.Errorf("failed to create rider: %w", err)
	}
	return nil
}

func (r *riderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rider, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword))
}

func (r *riderRepository) GetByEmail(ctx context.Context, email string) (*models.Rider, error) {
	return r.findOne(ctx, bson.M{"email": email}, options.FindOne())
}

func (r *riderRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Rider, error) {
	var rider models.Rider
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&rider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rider: %w", err)
	}
	return &rider, nil
}

func (r *riderRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName models.FullName, phone string, vehicle *models.Vehicle) (*models.Rider, error) {
	set := bson.M{
		"fullname":  fullName,
		"phone":     phone,
		"updatedAt": time.Now(),
	}
	if vehicle != nil {
		set["vehicle"] = vehicle
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var rider models.Rider
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&rider); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update rider: %w", err)
	}
	return &rider, nil
}

func (r *riderRepository) UpdateSocketID(ctx context.Context, id primitive.ObjectID, socketID string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"socketId": socketID, "updatedAt": time.Now()}})
}

// UpdateLocation overwrites the last known position; no history is kept.
func (r *riderRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, location *models.Location) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"location": location, "updatedAt": time.Now()}})
}

func (r *riderRepository) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"emailVerified": true, "updatedAt": time.Now()}})
}

func (r *riderRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}})
}

func (r *riderRepository) AddRide(ctx context.Context, id, rideID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"rides": rideID}})
}

func (r *riderRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update rider: %w", err)
	}
	if res.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *riderRepository) FindWithinRadius(ctx context.Context, lat, lng, radiusKM float64, vehicle models.VehicleType) ([]*models.Rider, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, utils.RadiusToRadians(radiusKM)},
			},
		},
		"vehicle.type": vehicle,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, fmt.Errorf("failed to find riders in radius: %w", err)
	}
	defer cursor.Close(ctx)

	riders := make([]*models.Rider, 0)
	if err := cursor.All(ctx, &riders); err != nil {
		return nil, fmt.Errorf("failed to decode riders: %w", err)
	}
	return riders, nil
}
