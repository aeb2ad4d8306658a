package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeRider UserType = "rider"
)

func (t UserType) IsValid() bool {
	return t == UserTypeUser || t == UserTypeRider
}

type User struct {
	ID            primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	FullName      FullName             `json:"fullname" bson:"fullname"`
	Email         string               `json:"email" bson:"email"`
	Password      string               `json:"-" bson:"password,omitempty"`
	Phone         string               `json:"phone" bson:"phone"`
	SocketID      string               `json:"socketId,omitempty" bson:"socketId,omitempty"`
	Rides         []primitive.ObjectID `json:"rides" bson:"rides"`
	EmailVerified bool                 `json:"emailVerified" bson:"emailVerified"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}
