package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RiderStatus string

const (
	RiderStatusActive   RiderStatus = "active"
	RiderStatusInactive RiderStatus = "inactive"
)

type FullName struct {
	FirstName string `json:"firstname" bson:"firstname"`
	LastName  string `json:"lastname" bson:"lastname"`
}

func (n FullName) String() string {
	if n.LastName == "" {
		return n.FirstName
	}
	return n.FirstName + " " + n.LastName
}

type Vehicle struct {
	Color    string      `json:"color" bson:"color"`
	Number   string      `json:"number" bson:"number"`
	Capacity int         `json:"capacity" bson:"capacity"`
	Type     VehicleType `json:"type" bson:"type"`
}

// Rider is a driver account. Location is a cache of the latest ping.
type Rider struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	FullName      FullName             `json:"fullname" bson:"fullname"`
	Email         string               `json:"email" bson:"email"`
	Password      string               `json:"-" bson:"password,omitempty"`
	Phone         string               `json:"phone" bson:"phone"`
	SocketID      string               `json:"socketId,omitempty" bson:"socketId,omitempty"`
	Status        RiderStatus          `json:"status" bson:"status"`
	Vehicle       Vehicle              `json:"vehicle" bson:"vehicle"`
	Location      *Location            `json:"location,omitempty" bson:"location,omitempty"`
	Rides         []primitive.ObjectID `json:"rides" bson:"rides"`
	EmailVerified bool                 `json:"emailVerified" bson:"emailVerified"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}
