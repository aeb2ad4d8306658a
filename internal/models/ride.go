package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string
type VehicleType string
type SenderRole string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"

	VehicleTypeAuto VehicleType = "auto"
	VehicleTypeCar  VehicleType = "car"
	VehicleTypeBike VehicleType = "bike"

	SenderRoleUser  SenderRole = "user"
	SenderRoleRider SenderRole = "rider"
)

// VehicleTypes lists every bookable vehicle class in tariff order.
var VehicleTypes = []VehicleType{VehicleTypeAuto, VehicleTypeCar, VehicleTypeBike}

func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTypeAuto, VehicleTypeCar, VehicleTypeBike:
		return true
	}
	return false
}

func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// IsActive reports whether a rider is currently bound to the ride.
func (s RideStatus) IsActive() bool {
	return s == RideStatusAccepted || s == RideStatusOngoing
}

func (r SenderRole) IsValid() bool {
	return r == SenderRoleUser || r == SenderRoleRider
}

// Ride field names double as the realtime wire format, so they follow the
// client contract rather than snake_case.
type Ride struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID  `json:"user" bson:"user"`
	RiderID     *primitive.ObjectID `json:"rider,omitempty" bson:"rider,omitempty"`
	Pickup      string              `json:"pickup" bson:"pickup"`
	Destination string              `json:"destination" bson:"destination"`
	Fare        int                 `json:"fare" bson:"fare"`
	Vehicle     VehicleType         `json:"vehicle" bson:"vehicle"`
	Status      RideStatus          `json:"status" bson:"status"`
	Duration    int                 `json:"duration" bson:"duration"` // seconds
	Distance    int                 `json:"distance" bson:"distance"` // meters
	PaymentID   string              `json:"paymentID,omitempty" bson:"paymentID,omitempty"`
	OrderID     string              `json:"orderId,omitempty" bson:"orderId,omitempty"`
	Signature   string              `json:"signature,omitempty" bson:"signature,omitempty"`
	OTP         string              `json:"otp,omitempty" bson:"otp,omitempty"`
	Messages    []ChatMessage       `json:"messages" bson:"messages"`
	AcceptedAt  *time.Time          `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	StartedAt   *time.Time          `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CancelledAt *time.Time          `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// WithoutOTP returns a shallow copy with the passcode cleared.
func (r Ride) WithoutOTP() Ride {
	r.OTP = ""
	return r
}

type ChatMessage struct {
	Msg       string     `json:"msg" bson:"msg"`
	By        SenderRole `json:"by" bson:"by"`
	Time      string     `json:"time" bson:"time"`
	Date      string     `json:"date" bson:"date"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

// RideDetails is a ride with its parties resolved. The outer user/rider
// fields shadow the embedded ids when encoded.
type RideDetails struct {
	Ride  `bson:",inline"`
	User  *User  `json:"user" bson:"-"`
	Rider *Rider `json:"rider,omitempty" bson:"-"`
}

// WithoutOTP returns a copy safe to hand to riders.
func (d RideDetails) WithoutOTP() RideDetails {
	d.Ride = d.Ride.WithoutOTP()
	return d
}

type ShareDetails struct {
	ID          primitive.ObjectID `json:"_id"`
	Pickup      string             `json:"pickup"`
	Destination string             `json:"destination"`
	Fare        int                `json:"fare"`
	Rider       ShareRider         `json:"rider"`
}

type ShareRider struct {
	FullName FullName     `json:"fullname"`
	Phone    string       `json:"phone"`
	Vehicle  ShareVehicle `json:"vehicle"`
}

type ShareVehicle struct {
	Type   VehicleType `json:"type"`
	Color  string      `json:"color"`
	Number string      `json:"number"`
}

type ChatDetails struct {
	User     ChatParty     `json:"user"`
	Rider    ChatParty     `json:"rider"`
	Messages []ChatMessage `json:"messages"`
}

type ChatParty struct {
	ID       *primitive.ObjectID `json:"_id,omitempty"`
	SocketID string              `json:"socketId,omitempty"`
	FullName *FullName           `json:"fullname,omitempty"`
	Phone    string              `json:"phone,omitempty"`
}
