package websocket

import (
	"encoding/json"
	"errors"
	"strings"
)

// Inbound event names.
const (
	EventJoin                = "join"
	EventUpdateLocationRider = "update-location-rider"
	EventJoinRoom            = "join-room"
	EventMessage             = "message"
	EventLog                 = "log"
)

// Outbound event names. Clients depend on these spellings.
const (
	EventConnected           = "connected"
	EventNewRide             = "new-ride"
	EventRideConfirmed       = "ride-confirmed"
	EventRideStarted         = "ride-started"
	EventRideEnded           = "ride-ended"
	EventRideCancelled       = "ride-cancelled"
	EventRiderLocationUpdate = "rider-location-update"
	EventReceiveMessage      = "receiveMessage"
	EventError               = "error"
)

var ErrInvalidRoomID = errors.New("room id is required")

// Envelope is an inbound frame; Data is decoded once the event is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Frame is an outbound frame.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type JoinPayload struct {
	UserID   string `json:"userId" validate:"required,object_id"`
	UserType string `json:"userType" validate:"required,user_type"`
}

// LatLng uses pointers so a zero coordinate is distinguishable from a
// missing one.
type LatLng struct {
	Ltd *float64 `json:"ltd" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type LocationUpdatePayload struct {
	UserID   string  `json:"userId" validate:"required,object_id"`
	Location *LatLng `json:"location" validate:"required"`
}

type ChatPayload struct {
	RideID   string `json:"rideId" validate:"required,object_id"`
	Msg      string `json:"msg" validate:"required,max=1000"`
	UserType string `json:"userType" validate:"required,user_type"`
	Time     string `json:"time"`
}

type LogPayload struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message" validate:"required"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type ConnectedPayload struct {
	SocketID string `json:"socketId"`
}

type ReceiveMessagePayload struct {
	Msg  string `json:"msg"`
	By   string `json:"by"`
	Time string `json:"time"`
}

type RiderLocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RiderID   string  `json:"riderId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DecodeRoomID accepts either a bare string or {"roomId": "..."}.
func DecodeRoomID(data json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		id = strings.TrimSpace(id)
		if id == "" {
			return "", ErrInvalidRoomID
		}
		return id, nil
	}

	var obj struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", ErrInvalidRoomID
	}
	obj.RoomID = strings.TrimSpace(obj.RoomID)
	if obj.RoomID == "" {
		return "", ErrInvalidRoomID
	}
	return obj.RoomID, nil
}
