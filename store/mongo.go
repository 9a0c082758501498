package store

import (
	"context"
	"time"

	"linkup/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo persists conversations and their message logs. Conversations are
// keyed by string id so the deterministic direct-conversation key can double
// as the document id.
type Mongo struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongo(conversations, messages *mongo.Collection) *Mongo {
	return &Mongo{conversations: conversations, messages: messages}
}

// EnsureDirect creates the metadata document for a direct conversation if it
// does not exist yet. The upsert with $setOnInsert makes concurrent calls for
// the same pair converge on one document without clobbering the createdAt of
// a concurrently created one.
func (s *Mongo) EnsureDirect(ctx context.Context, id string, members []string, createdAt time.Time) error {
	_, err := s.conversations.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": bson.M{
			"isGroup":   false,
			"members":   members,
			"createdAt": createdAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// CreateGroup inserts a new group conversation. Group ids are opaque, so a
// plain insert is fine; repeated calls always produce distinct documents.
func (s *Mongo) CreateGroup(ctx context.Context, conv *models.Conversation) error {
	_, err := s.conversations.InsertOne(ctx, conv)
	return err
}

// Get returns (nil, nil) when the conversation does not exist.
func (s *Mongo) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByMember returns every conversation whose members array contains the
// participant. Matching a scalar against an array field is Mongo's native
// array-contains query and is backed by the members index.
func (s *Mongo) ListByMember(ctx context.Context, participantID string) ([]models.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, bson.M{"members": participantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *Mongo) AppendMessage(ctx context.Context, msg *models.Message) error {
	_, err := s.messages.InsertOne(ctx, msg)
	return err
}

// SetLastMessage merge-updates the denormalized projection fields on the
// conversation document. It deliberately runs after the log append and is
// not transactional with it; the log stays the source of truth.
func (s *Mongo) SetLastMessage(ctx context.Context, conversationID, text string, at time.Time) error {
	_, err := s.conversations.UpdateOne(
		ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{
			"lastMessage":   text,
			"lastUpdatedAt": at,
		}},
	)
	return err
}

// Messages returns a conversation's log oldest first.
func (s *Mongo) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// UserDirectory resolves participant identifiers to public profiles from the
// users collection. A missing or malformed id resolves to nil, not an error,
// so callers can substitute a fallback label.
type UserDirectory struct {
	users *mongo.Collection
}

func NewUserDirectory(users *mongo.Collection) *UserDirectory {
	return &UserDirectory{users: users}
}

func (d *UserDirectory) Profile(ctx context.Context, participantID string) (*models.PublicProfile, error) {
	oid, err := primitive.ObjectIDFromHex(participantID)
	if err != nil {
		return nil, nil
	}

	var user models.User
	err = d.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.PublicProfile{
		ID:     user.ID.Hex(),
		Name:   user.Name,
		Avatar: user.Avatar,
	}, nil
}
