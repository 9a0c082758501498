package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var Users *mongo.Collection
var Conversations *mongo.Collection
var Messages *mongo.Collection
var Friendships *mongo.Collection
var Events *mongo.Collection
var PushSubs *mongo.Collection

// Connect dials MongoDB, pings it and wires up the named collections.
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database(dbName)
	Users = db.Collection("users")
	Conversations = db.Collection("conversations")
	Messages = db.Collection("messages")
	Friendships = db.Collection("friendships")
	Events = db.Collection("events")
	PushSubs = db.Collection("push_subscriptions")

	ensureIndexes()

	log.Println("Connected to MongoDB successfully")
	return nil
}

// ensureIndexes creates the indexes the read paths depend on. The members
// index backs the array-contains query used to list a participant's
// conversations.
func ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members", Value: 1}},
	})
	if err != nil {
		log.Printf("Failed to create conversations.members index: %v", err)
	}

	_, err = Messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		log.Printf("Failed to create messages index: %v", err)
	}

	_, err = Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("Failed to create users.email index: %v", err)
	}
}

func Disconnect() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
