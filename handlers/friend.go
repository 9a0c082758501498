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
)

type FriendRequestBody struct {
	UserID string `json:"userId" binding:"required"`
}

// SendFriendRequest creates a pending friendship from the authenticated user
// to the target. Duplicate requests in either direction are rejected.
func SendFriendRequest(c *gin.Context) {
	requesterID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req FriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}
	if receiverID == requesterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot friend yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := userExists(ctx, receiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	pairFilter := bson.M{"$or": []bson.M{
		{"requesterId": requesterID, "receiverId": receiverID},
		{"requesterId": receiverID, "receiverId": requesterID},
	}}
	count, err := database.Friendships.CountDocuments(ctx, pairFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Friendship already exists"})
		return
	}

	friendship := models.Friendship{
		ID:          primitive.NewObjectID(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.FriendshipPending,
		CreatedAt:   time.Now().Unix(),
	}
	if _, err := database.Friendships.InsertOne(ctx, friendship); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create friend request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Friend request sent"})
}

// AcceptFriendRequest flips a pending request addressed to the authenticated
// user into an accepted friendship.
func AcceptFriendRequest(c *gin.Context) {
	receiverID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req FriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requesterID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Friendships.UpdateOne(
		ctx,
		bson.M{"requesterId": requesterID, "receiverId": receiverID, "status": models.FriendshipPending},
		bson.M{"$set": bson.M{"status": models.FriendshipAccepted}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No pending request from this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

// RemoveFriend deletes the friendship document in either direction. It
// covers reject, cancel and unfriend.
func RemoveFriend(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Friendships.DeleteOne(ctx, bson.M{"$or": []bson.M{
		{"requesterId": userID, "receiverId": otherID},
		{"requesterId": otherID, "receiverId": userID},
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Friendship not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friendship removed"})
}

// ListFriends returns every accepted and pending relation of the
// authenticated user, enriched with the counterpart's profile.
func ListFriends(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Friendships.Find(ctx, bson.M{"$or": []bson.M{
		{"requesterId": userID},
		{"receiverId": userID},
	}})
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

	// One batched lookup for every counterpart instead of a query per row.
	profiles := make(map[primitive.ObjectID]models.User)
	if otherIDs := friendCounterparts(userID, friendships); len(otherIDs) > 0 {
		userCursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": otherIDs}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load friend profiles"})
			return
		}
		defer userCursor.Close(ctx)

		var users []models.User
		if err := userCursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode friend profiles"})
			return
		}
		for _, u := range users {
			profiles[u.ID] = u
		}
	}

	results := make([]gin.H, 0, len(friendships))
	for _, f := range friendships {
		results = append(results, friendEntry(userID, f, profiles))
	}

	c.JSON(http.StatusOK, results)
}

// friendCounterparts extracts the other side of each friendship row.
func friendCounterparts(userID primitive.ObjectID, friendships []models.Friendship) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(friendships))
	for _, f := range friendships {
		if f.RequesterID == userID {
			out = append(out, f.ReceiverID)
		} else {
			out = append(out, f.RequesterID)
		}
	}
	return out
}

// friendEntry renders one friendship row from the requester's point of view.
// A counterpart whose account is gone degrades to a placeholder label.
func friendEntry(userID primitive.ObjectID, f models.Friendship, profiles map[primitive.ObjectID]models.User) gin.H {
	otherID := f.RequesterID
	if otherID == userID {
		otherID = f.ReceiverID
	}

	entry := gin.H{
		"id":          otherID.Hex(),
		"name":        "User " + otherID.Hex(),
		"avatar":      fallbackAvatar,
		"status":      f.Status,
		"requesterId": f.RequesterID.Hex(),
		"receiverId":  f.ReceiverID.Hex(),
		"createdAt":   f.CreatedAt,
	}

	if other, ok := profiles[otherID]; ok {
		entry["name"] = other.Name
		if other.Avatar != "" {
			entry["avatar"] = other.Avatar
		}
	}
	return entry
}
