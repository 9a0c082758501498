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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetMe(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

func UpdateMe(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"lastSeen": time.Now().Unix()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Avatar != nil {
		update["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		update["bio"] = *req.Bio
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

func GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	avatar := user.Avatar
	if avatar == "" {
		avatar = fallbackAvatar
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"name":     user.Name,
		"avatar":   avatar,
		"bio":      user.Bio,
	})
}

// SearchUsers matches names and usernames case-insensitively on a prefix or
// substring of the q parameter.
func SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"name": bson.M{"$regex": query, "$options": "i"}},
		{"username": bson.M{"$regex": query, "$options": "i"}},
	}}

	cursor, err := database.Users.Find(ctx, filter, options.Find().SetLimit(25))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	results := make([]gin.H, 0, len(users))
	for _, u := range users {
		avatar := u.Avatar
		if avatar == "" {
			avatar = fallbackAvatar
		}
		results = append(results, gin.H{
			"id":       u.ID.Hex(),
			"username": u.Username,
			"name":     u.Name,
			"avatar":   avatar,
		})
	}

	c.JSON(http.StatusOK, results)
}

// userExists is shared by the friend handlers.
func userExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := database.Users.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil && err != mongo.ErrNoDocuments {
		return false, err
	}
	return count > 0, nil
}
