package models

import "time"

// Message is one entry in a conversation's append-only log. Messages are
// immutable once written; there is no edit or delete path.
type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversationId" json:"conversationId"`
	SenderID       string    `bson:"senderId" json:"senderId"`
	Text           string    `bson:"text" json:"text"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
