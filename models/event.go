package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Event is a calendar entry owned by its creator.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorID   primitive.ObjectID `bson:"creatorId" json:"creatorId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	EventDate   int64              `bson:"eventDate" json:"eventDate"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
}
