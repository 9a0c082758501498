package handlers

import (
	"context"
	"net/http"
	"time"

	"linkup/database"
	"linkup/models"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PushHandler serves the web push subscription endpoints.
type PushHandler struct {
	vapidPublicKey string
}

func NewPushHandler(vapidPublicKey string) *PushHandler {
	return &PushHandler{vapidPublicKey: vapidPublicKey}
}

// GetVapidPublicKey exposes the public key to subscribing clients.
func (h *PushHandler) GetVapidPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.vapidPublicKey})
}

// SubscribePush stores or replaces the caller's push subscription.
func (h *PushHandler) SubscribePush(c *gin.Context) {
	userID := c.GetString("userId")

	var sub webpush.Subscription
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if sub.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription endpoint is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.PushSubs.UpdateOne(
		ctx,
		bson.M{"userId": userID},
		bson.M{"$set": models.PushSubscription{UserID: userID, Sub: sub}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}
