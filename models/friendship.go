package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship links a requester to a receiver. A single document covers the
// relation in both directions; status moves pending -> accepted, rejection
// deletes the document.
type Friendship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID primitive.ObjectID `bson:"requesterId" json:"requesterId"`
	ReceiverID  primitive.ObjectID `bson:"receiverId" json:"receiverId"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`
}
