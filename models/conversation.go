package models

import "time"

// Conversation is the metadata document for a direct or group conversation.
// The _id is a string on purpose: direct conversations use the deterministic
// "dm_<a>_<b>" key derived from the sorted participant pair, groups get an
// opaque generated id. LastMessage and LastUpdatedAt are a denormalized
// projection of the message log; the log stays authoritative.
type Conversation struct {
	ID            string     `bson:"_id" json:"id"`
	IsGroup       bool       `bson:"isGroup" json:"isGroup"`
	Name          string     `bson:"name,omitempty" json:"name,omitempty"`
	Members       []string   `bson:"members" json:"members"`
	LastMessage   *string    `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastUpdatedAt *time.Time `bson:"lastUpdatedAt,omitempty" json:"lastUpdatedAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
}

// ConversationSummary is one row of a participant's conversation list.
// For direct conversations Name carries the counterpart's display name and
// DMWith their public profile; the stored name field is meaningless there.
type ConversationSummary struct {
	ID            string         `json:"id"`
	IsGroup       bool           `json:"isGroup"`
	Name          string         `json:"name"`
	Members       []string       `json:"members"`
	LastMessage   *string        `json:"lastMessage"`
	LastUpdatedAt *time.Time     `json:"lastUpdatedAt"`
	DMWith        *PublicProfile `json:"dmWith,omitempty"`
}
