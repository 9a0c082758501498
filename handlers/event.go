package handlers

import (
	"context"
	"net/http"
	"time"

	"linkup/database"
	"linkup/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	EventDate   int64  `json:"eventDate" binding:"required"`
}

func CreateEvent(c *gin.Context) {
	creatorID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := models.Event{
		ID:          primitive.NewObjectID(),
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		CreatedAt:   time.Now().Unix(),
	}
	if _, err := database.Events.InsertOne(ctx, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "id": event.ID.Hex()})
}

// ListMyEvents returns the authenticated user's events, earliest first.
func ListMyEvents(c *gin.Context) {
	creatorID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}})
	cursor, err := database.Events.Find(ctx, bson.M{"creatorId": creatorID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

// ListFriendsEvents returns the events created by the caller's accepted
// friends, earliest first. Pending requests contribute nothing.
func ListFriendsEvents(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Friendships.Find(ctx, bson.M{
		"status": models.FriendshipAccepted,
		"$or": []bson.M{
			{"requesterId": userID},
			{"receiverId": userID},
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}
	defer cursor.Close(ctx)

	var friendships []models.Friendship
	if err := cursor.All(ctx, &friendships); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode friends"})
		return
	}

	friendIDs := friendCounterparts(userID, friendships)
	if len(friendIDs) == 0 {
		c.JSON(http.StatusOK, []models.Event{})
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "eventDate", Value: 1}})
	eventCursor, err := database.Events.Find(ctx, bson.M{"creatorId": bson.M{"$in": friendIDs}}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	defer eventCursor.Close(ctx)

	var events []models.Event
	if err := eventCursor.All(ctx, &events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode events"})
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, events)
}

func DeleteEvent(c *gin.Context) {
	creatorID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Events.DeleteOne(ctx, bson.M{"_id": eventID, "creatorId": creatorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
