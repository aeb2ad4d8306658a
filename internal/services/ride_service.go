package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"quickride/internal/config"
	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/internal/utils"
	"quickride/pkg/events"
	"quickride/pkg/logger"
	"quickride/pkg/maps"
	"quickride/pkg/metrics"
	"quickride/pkg/websocket"
)

// Notifier delivers a single event to one live connection. Delivery to an
// unknown connection is a no-op that reports false.
type Notifier interface {
	SendToConnection(connID, event string, payload interface{}) bool
}

type RideService interface {
	Create(ctx context.Context, userID primitive.ObjectID, pickup, destination string, vehicle models.VehicleType) (*models.Ride, error)
	Quote(ctx context.Context, pickup, destination string) (*models.FareQuote, error)

	Confirm(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.RideDetails, error)
	Start(ctx context.Context, rideID primitive.ObjectID, otp string, riderID primitive.ObjectID) (*models.RideDetails, error)
	End(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.RideDetails, error)
	Cancel(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error)

	ShareDetails(ctx context.Context, rideID primitive.ObjectID) (*models.ShareDetails, error)
	ChatDetails(ctx context.Context, rideID primitive.ObjectID) (*models.ChatDetails, error)
	ActiveRidesForRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error)
	AppendChatMessage(ctx context.Context, rideID primitive.ObjectID, by models.SenderRole, msg, clientTime string) error
}

type rideService struct {
	rides     interfaces.RideRepository
	riders    interfaces.RiderRepository
	users     interfaces.UserRepository
	fares     FareService
	maps      maps.MapsProvider
	notifier  Notifier
	publisher events.Publisher
	config    *config.RideConfig
	logger    *logger.Logger
}

func NewRideService(
	rides interfaces.RideRepository,
	riders interfaces.RiderRepository,
	users interfaces.UserRepository,
	fares FareService,
	mapsProvider maps.MapsProvider,
	notifier Notifier,
	publisher events.Publisher,
	cfg *config.RideConfig,
	logger *logger.Logger,
) RideService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &rideService{
		rides:     rides,
		riders:    riders,
		users:     users,
		fares:     fares,
		maps:      mapsProvider,
		notifier:  notifier,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

func (s *rideService) Create(ctx context.Context, userID primitive.ObjectID, pickup, destination string, vehicle models.VehicleType) (*models.Ride, error) {
	if userID.IsZero() || strings.TrimSpace(pickup) == "" || strings.TrimSpace(destination) == "" || vehicle == "" {
		return nil, newValidationError("All fields are required", nil)
	}
	if !vehicle.IsValid() {
		return nil, newValidationError("Invalid vehicle type", map[string]string{"vehicleType": "Invalid vehicle type"})
	}

	quote, err := s.fares.Quote(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	ride := &models.Ride{
		UserID:      userID,
		Pickup:      pickup,
		Destination: destination,
		Fare:        quote.Fare.For(vehicle),
		Vehicle:     vehicle,
		Status:      models.RideStatusPending,
		Distance:    quote.DistanceTime.Distance.Value,
		Duration:    quote.DistanceTime.Duration.Value,
		OTP:         otp,
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	if err := s.users.AddRide(ctx, userID, ride.ID); err != nil {
		s.logger.WithUserID(userID).WithRideID(ride.ID).WithError(err).Warn("Failed to link ride to user")
	}

	s.recordTransition(ride)

	offer := ride.WithoutOTP()
	runDetached(s.logger, "dispatch_new_ride", s.config.BackgroundTimeout, func(ctx context.Context) error {
		return s.dispatchNewRide(ctx, offer)
	})

	return ride, nil
}

func (s *rideService) Quote(ctx context.Context, pickup, destination string) (*models.FareQuote, error) {
	return s.fares.Quote(ctx, pickup, destination)
}

// dispatchNewRide offers a freshly created ride to nearby riders of the
// requested vehicle class.
func (s *rideService) dispatchNewRide(ctx context.Context, ride models.Ride) error {
	riders, err := s.ridersNear(ctx, ride.Pickup, ride.Vehicle)
	if err != nil {
		return err
	}

	details := models.RideDetails{Ride: ride}
	if user, err := s.users.GetByID(ctx, ride.UserID); err == nil {
		details.User = user
	}

	delivered := s.broadcastToRiders(riders, websocket.EventNewRide, details)
	s.logger.LogRideEvent(ride.ID, websocket.EventNewRide, map[string]interface{}{
		"candidates": len(riders),
		"delivered":  delivered,
	})
	return nil
}

func (s *rideService) ridersNear(ctx context.Context, address string, vehicle models.VehicleType) ([]*models.Rider, error) {
	coords, err := s.maps.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode pickup: %w", err)
	}

	riders, err := s.riders.FindWithinRadius(ctx, coords.Ltd, coords.Lng, s.config.SearchRadiusKM, vehicle)
	if err != nil {
		return nil, fmt.Errorf("failed to find riders in radius: %w", err)
	}

	// The store's spherical match can disagree at the edge; the radius is
	// inclusive and decided here.
	within := riders[:0]
	for _, rider := range riders {
		if rider.Location == nil {
			continue
		}
		if utils.IsWithinRadius(coords.Ltd, coords.Lng, rider.Location.Latitude(), rider.Location.Longitude(), s.config.SearchRadiusKM) {
			within = append(within, rider)
		}
	}
	return within, nil
}

func (s *rideService) broadcastToRiders(riders []*models.Rider, event string, payload interface{}) int {
	delivered := 0
	for _, rider := range riders {
		if rider.SocketID == "" {
			continue
		}
		if s.notifier.SendToConnection(rider.SocketID, event, payload) {
			delivered++
		}
	}
	return delivered
}

func (s *rideService) Confirm(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.RideDetails, error) {
	ride, err := s.rides.Accept(ctx, rideID, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			return nil, s.confirmRejection(ctx, rideID)
		}
		return nil, fmt.Errorf("failed to confirm ride: %w", err)
	}

	if err := s.riders.AddRide(ctx, riderID, rideID); err != nil {
		s.logger.WithRiderID(riderID).WithRideID(rideID).WithError(err).Warn("Failed to link ride to rider")
	}

	// The accepted ride carries the otp; only the requester may see it.
	details := s.populate(ctx, ride)
	s.recordTransition(ride)
	s.notifyRequester(details, websocket.EventRideConfirmed, details)

	stripped := details.WithoutOTP()
	return &stripped, nil
}

// confirmRejection explains why a ride could not be accepted.
func (s *rideService) confirmRejection(ctx context.Context, rideID primitive.ObjectID) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError("Ride not found.")
		}
		return fmt.Errorf("failed to get ride: %w", err)
	}

	switch ride.Status {
	case models.RideStatusAccepted:
		return newConflictError("The ride is accepted by another rider before you. Better luck next time.")
	case models.RideStatusOngoing:
		return newConflictError("The ride is currently ongoing with another rider.")
	case models.RideStatusCompleted:
		return newConflictError("The ride has already been completed.")
	case models.RideStatusCancelled:
		return newConflictError("The ride has been cancelled.")
	}
	return newConflictError("The ride could not be confirmed.")
}

func (s *rideService) Start(ctx context.Context, rideID primitive.ObjectID, otp string, riderID primitive.ObjectID) (*models.RideDetails, error) {
	if strings.TrimSpace(otp) == "" {
		return nil, newValidationError("Ride id and OTP are required", nil)
	}

	ride, err := s.rides.GetByIDWithOTP(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("Ride not found")
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.Status != models.RideStatusAccepted {
		return nil, newConflictError("Ride not accepted")
	}

	if strings.TrimSpace(otp) != strings.TrimSpace(ride.OTP) {
		return nil, &ServiceError{Kind: ErrInvalidOTP, Message: "Invalid OTP"}
	}

	started, err := s.rides.Start(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			return nil, newConflictError("Ride not accepted")
		}
		return nil, fmt.Errorf("failed to start ride: %w", err)
	}

	s.logger.WithRideID(rideID).WithRiderID(riderID).Info("Ride started")

	details := s.populate(ctx, started)
	s.recordTransition(started)
	s.notifyRequester(details, websocket.EventRideStarted, details)

	return details, nil
}

func (s *rideService) End(ctx context.Context, rideID, riderID primitive.ObjectID) (*models.RideDetails, error) {
	ride, err := s.rides.GetByIDAndRider(ctx, rideID, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("Ride not found")
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.Status != models.RideStatusOngoing {
		return nil, newConflictError("Ride not ongoing")
	}

	completed, err := s.rides.Complete(ctx, rideID, riderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotModified) {
			return nil, newConflictError("Ride not ongoing")
		}
		return nil, fmt.Errorf("failed to end ride: %w", err)
	}

	details := s.populate(ctx, completed)
	s.recordTransition(completed)
	s.notifyRequester(details, websocket.EventRideEnded, details)

	return details, nil
}

func (s *rideService) Cancel(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rides.Cancel(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("Ride not found")
		}
		return nil, fmt.Errorf("failed to cancel ride: %w", err)
	}

	s.recordTransition(ride)

	riders, err := s.ridersNear(ctx, ride.Pickup, ride.Vehicle)
	if err != nil {
		s.logger.WithRideID(rideID).WithError(err).Warn("Failed to notify riders of cancellation")
		return ride, nil
	}
	delivered := s.broadcastToRiders(riders, websocket.EventRideCancelled, ride)
	s.logger.LogRideEvent(rideID, websocket.EventRideCancelled, map[string]interface{}{
		"candidates": len(riders),
		"delivered":  delivered,
	})

	return ride, nil
}

func (s *rideService) ShareDetails(ctx context.Context, rideID primitive.ObjectID) (*models.ShareDetails, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	if ride == nil || !ride.Status.IsActive() {
		return nil, newNotFoundError("Ride not found or has ended")
	}

	share := &models.ShareDetails{
		ID:          ride.ID,
		Pickup:      ride.Pickup,
		Destination: ride.Destination,
		Fare:        ride.Fare,
	}

	if ride.RiderID != nil {
		rider, err := s.riders.GetByID(ctx, *ride.RiderID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("failed to get rider: %w", err)
		}
		if rider != nil {
			share.Rider = models.ShareRider{
				FullName: rider.FullName,
				Phone:    rider.Phone,
				Vehicle: models.ShareVehicle{
					Type:   rider.Vehicle.Type,
					Color:  rider.Vehicle.Color,
					Number: rider.Vehicle.Number,
				},
			}
		}
	}

	return share, nil
}

func (s *rideService) ChatDetails(ctx context.Context, rideID primitive.ObjectID) (*models.ChatDetails, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newNotFoundError("Ride not found")
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	details := &models.ChatDetails{Messages: ride.Messages}
	if details.Messages == nil {
		details.Messages = []models.ChatMessage{}
	}

	if user, err := s.users.GetByID(ctx, ride.UserID); err == nil {
		details.User = models.ChatParty{ID: &user.ID, SocketID: user.SocketID, FullName: &user.FullName, Phone: user.Phone}
	}
	if ride.RiderID != nil {
		if rider, err := s.riders.GetByID(ctx, *ride.RiderID); err == nil {
			details.Rider = models.ChatParty{ID: &rider.ID, SocketID: rider.SocketID, FullName: &rider.FullName, Phone: rider.Phone}
		}
	}

	return details, nil
}

func (s *rideService) ActiveRidesForRider(ctx context.Context, riderID primitive.ObjectID) ([]*models.Ride, error) {
	rides, err := s.rides.FindActiveByRider(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active rides: %w", err)
	}
	return rides, nil
}

func (s *rideService) AppendChatMessage(ctx context.Context, rideID primitive.ObjectID, by models.SenderRole, msg, clientTime string) error {
	now := time.Now()
	message := models.ChatMessage{
		Msg:       msg,
		By:        by,
		Time:      clientTime,
		Date:      utils.FormatChatDate(now, s.config.ChatTimezone),
		Timestamp: now,
	}

	if err := s.rides.AppendMessage(ctx, rideID, message); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return newNotFoundError("Ride not found")
		}
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// populate resolves the parties of a ride. Missing parties are left nil.
func (s *rideService) populate(ctx context.Context, ride *models.Ride) *models.RideDetails {
	details := &models.RideDetails{Ride: *ride}

	if user, err := s.users.GetByID(ctx, ride.UserID); err == nil {
		details.User = user
	} else {
		s.logger.WithRideID(ride.ID).WithError(err).Warn("Failed to load ride user")
	}

	if ride.RiderID != nil {
		if rider, err := s.riders.GetByID(ctx, *ride.RiderID); err == nil {
			details.Rider = rider
		} else {
			s.logger.WithRideID(ride.ID).WithError(err).Warn("Failed to load ride rider")
		}
	}

	return details
}

func (s *rideService) notifyRequester(details *models.RideDetails, event string, payload interface{}) {
	if details.User == nil || details.User.SocketID == "" {
		s.logger.WithRideID(details.ID).WithField("event", event).Warn("Requester has no live connection")
		return
	}
	s.notifier.SendToConnection(details.User.SocketID, event, payload)
}

// recordTransition counts the ride's new status and hands it to the event
// stream without holding up the caller.
func (s *rideService) recordTransition(ride *models.Ride) {
	metrics.RecordTransition(string(ride.Status))

	event := events.RideEvent{
		Type:   "ride." + string(ride.Status),
		RideID: ride.ID.Hex(),
		Status: string(ride.Status),
		UserID: ride.UserID.Hex(),
		At:     time.Now().UTC(),
	}
	if ride.RiderID != nil {
		event.RiderID = ride.RiderID.Hex()
	}

	s.logger.LogRideEvent(ride.ID, event.Type, map[string]interface{}{"status": event.Status})

	runDetached(s.logger, "publish_ride_event", s.config.BackgroundTimeout, func(ctx context.Context) error {
		return s.publisher.PublishRideEvent(ctx, event)
	})
}
