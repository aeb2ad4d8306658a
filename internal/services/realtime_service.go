package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"quickride/internal/config"
	"quickride/internal/models"
	"quickride/internal/repositories/interfaces"
	"quickride/internal/utils"
	"quickride/internal/validators"
	"quickride/pkg/logger"
	"quickride/pkg/websocket"
)

// RoomBroadcaster fans an event out to every member of a room.
type RoomBroadcaster interface {
	BroadcastToRoom(roomID, event string, payload interface{}, exceptID string) int
}

type RealtimeOptions struct {
	// LogIngest enables the client log event.
	LogIngest bool
}

// RealtimeService dispatches inbound socket events.
type RealtimeService struct {
	users    interfaces.UserRepository
	riders   interfaces.RiderRepository
	logs     interfaces.FrontendLogRepository
	rides    RideService
	rooms    RoomBroadcaster
	config   *config.RideConfig
	options  RealtimeOptions
	logger   *logger.Logger
	handlers map[string]func(ctx context.Context, client *websocket.Client, data json.RawMessage)

	// chat persists messages per ride in the order they were broadcast.
	chat *orderedQueue
}

func NewRealtimeService(
	users interfaces.UserRepository,
	riders interfaces.RiderRepository,
	logs interfaces.FrontendLogRepository,
	rides RideService,
	rooms RoomBroadcaster,
	cfg *config.RideConfig,
	options RealtimeOptions,
	logger *logger.Logger,
) *RealtimeService {
	s := &RealtimeService{
		users:   users,
		riders:  riders,
		logs:    logs,
		rides:   rides,
		rooms:   rooms,
		config:  cfg,
		options: options,
		logger:  logger,
		chat:    newOrderedQueue(logger, "append_chat_message", cfg.BackgroundTimeout),
	}

	s.handlers = map[string]func(context.Context, *websocket.Client, json.RawMessage){
		websocket.EventJoin:                s.handleJoin,
		websocket.EventUpdateLocationRider: s.handleLocationUpdate,
		websocket.EventJoinRoom:            s.handleJoinRoom,
		websocket.EventMessage:             s.handleMessage,
	}
	if options.LogIngest {
		s.handlers[websocket.EventLog] = s.handleLog
	}

	return s
}

func (s *RealtimeService) HandleEvent(ctx context.Context, client *websocket.Client, event string, data json.RawMessage) {
	handler, ok := s.handlers[event]
	if !ok {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: "Unknown event: " + event})
		return
	}

	// Handlers run on the connection's read loop.
	ctx, cancel := context.WithTimeout(ctx, s.config.BackgroundTimeout)
	defer cancel()
	handler(ctx, client, data)
}

func (s *RealtimeService) handleJoin(ctx context.Context, client *websocket.Client, data json.RawMessage) {
	var payload websocket.JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: "Invalid join data"})
		return
	}
	if errs := validators.ValidateStruct(&payload); len(errs) > 0 {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: errs.First()})
		return
	}

	id, _ := validators.ParseObjectID(payload.UserID)
	log := s.logger.WithSocketID(client.ID).WithField("user_type", payload.UserType)

	var err error
	switch models.UserType(payload.UserType) {
	case models.UserTypeUser:
		err = s.users.UpdateSocketID(ctx, id, client.ID)
	case models.UserTypeRider:
		err = s.riders.UpdateSocketID(ctx, id, client.ID)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to register connection")
		return
	}
	log.WithField("account_id", payload.UserID).Info("Connection joined")
}

func (s *RealtimeService) handleLocationUpdate(ctx context.Context, client *websocket.Client, data json.RawMessage) {
	var payload websocket.LocationUpdatePayload
	if err := json.Unmarshal(data, &payload); err != nil || len(validators.ValidateStruct(&payload)) > 0 {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: "Invalid location data"})
		return
	}

	riderID, _ := validators.ParseObjectID(payload.UserID)
	lat, lng := *payload.Location.Ltd, *payload.Location.Lng

	if err := s.riders.UpdateLocation(ctx, riderID, models.NewPoint(lat, lng)); err != nil {
		s.logger.WithRiderID(riderID).WithError(err).Warn("Failed to update rider location")
		return
	}

	rides, err := s.rides.ActiveRidesForRider(ctx, riderID)
	if err != nil {
		s.logger.WithRiderID(riderID).WithError(err).Warn("Failed to load active rides")
		return
	}

	update := websocket.RiderLocationPayload{Latitude: lat, Longitude: lng, RiderID: payload.UserID}
	for _, ride := range rides {
		s.rooms.BroadcastToRoom(ride.ID.Hex(), websocket.EventRiderLocationUpdate, update, "")
	}
}

func (s *RealtimeService) handleJoinRoom(_ context.Context, client *websocket.Client, data json.RawMessage) {
	roomID, err := websocket.DecodeRoomID(data)
	if err != nil {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: "Invalid room id"})
		return
	}
	client.JoinRoom(roomID)
	s.logger.WithSocketID(client.ID).WithField("room_id", roomID).Debug("Joined room")
}

func (s *RealtimeService) handleMessage(_ context.Context, client *websocket.Client, data json.RawMessage) {
	var payload websocket.ChatPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: "Invalid message data"})
		return
	}
	if errs := validators.ValidateStruct(&payload); len(errs) > 0 {
		client.Reply(websocket.EventError, websocket.ErrorPayload{Message: errs.First()})
		return
	}

	s.rooms.BroadcastToRoom(payload.RideID, websocket.EventReceiveMessage, websocket.ReceiveMessagePayload{
		Msg:  payload.Msg,
		By:   payload.UserType,
		Time: payload.Time,
	}, client.ID)

	rideID, _ := validators.ParseObjectID(payload.RideID)
	by := models.SenderRole(payload.UserType)
	s.chat.Submit(rideID.Hex(), func(ctx context.Context) error {
		return s.rides.AppendChatMessage(ctx, rideID, by, payload.Msg, payload.Time)
	})
}

func (s *RealtimeService) handleLog(_ context.Context, client *websocket.Client, data json.RawMessage) {
	var payload websocket.LogPayload
	if err := json.Unmarshal(data, &payload); err != nil || len(validators.ValidateStruct(&payload)) > 0 {
		return
	}

	now := time.Now()
	entry := &models.FrontendLog{
		Level:              strings.ToLower(payload.Level),
		Message:            payload.Message,
		Context:            payload.Context,
		SocketID:           client.ID,
		FormattedTimestamp: utils.FormatLogTimestamp(now, s.config.ChatTimezone),
		CreatedAt:          now,
	}

	runDetached(s.logger, "store_frontend_log", s.config.BackgroundTimeout, func(ctx context.Context) error {
		return s.logs.Create(ctx, entry)
	})
}
