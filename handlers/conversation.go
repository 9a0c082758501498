package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"linkup/chat"

	"github.com/gin-gonic/gin"
)

// ConversationHandler serves the read path of the conversation layer: the
// per-participant conversation list and a conversation's message log.
type ConversationHandler struct {
	chat *chat.Service
}

func NewConversationHandler(svc *chat.Service) *ConversationHandler {
	return &ConversationHandler{chat: svc}
}

// List returns the authenticated user's conversations, newest activity
// first, with direct conversations labelled by the counterpart's profile.
func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.GetString("userId")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conversations, err := h.chat.List(ctx, userID)
	if err != nil {
		log.Printf("Failed to list conversations for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// Messages returns a conversation's log oldest first. Requesters outside the
// member list are refused.
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID := c.GetString("userId")
	conversationID := c.Param("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messages, err := h.chat.Messages(ctx, userID, conversationID)
	if errors.Is(err, chat.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if errors.Is(err, chat.ErrNotMember) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to conversation"})
		return
	}
	if err != nil {
		log.Printf("Failed to fetch messages for %s: %v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
