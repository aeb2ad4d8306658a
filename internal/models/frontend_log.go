package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FrontendLog is a client-side log line shipped over the socket in production.
type FrontendLog struct {
	ID                 primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	Level              string                 `json:"level" bson:"level"`
	Message            string                 `json:"message" bson:"message"`
	Context            map[string]interface{} `json:"context,omitempty" bson:"context,omitempty"`
	SocketID           string                 `json:"socketId" bson:"socketId"`
	FormattedTimestamp string                 `json:"formattedTimestamp" bson:"formattedTimestamp"`
	CreatedAt          time.Time              `json:"createdAt" bson:"createdAt"`
}
