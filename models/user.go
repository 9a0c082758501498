package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Username     string             `bson:"username" json:"username"`
	Name         string             `bson:"name" json:"name"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	Bio          string             `bson:"bio" json:"bio"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	LastSeen     int64              `bson:"lastSeen" json:"lastSeen"`
}

// PublicProfile is the subset of a user document other participants are
// allowed to see. The conversation listing uses it to label direct
// conversations with the counterpart's name and avatar.
type PublicProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
