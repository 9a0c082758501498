package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"linkup/chat"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	handlerTimeout = 10 * time.Second
)

// Client binds one websocket connection to its authenticated participant.
// userID is set during the handshake and trusted as the sender for every
// event the connection produces afterwards.
type Client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	hub    *Hub
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error (user %s): %v", c.userID, err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendError("Malformed event")
			continue
		}

		c.handleEvent(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent dispatches one inbound event. Errors stay local to this
// connection: a failed handler sends at most an error event here and never
// touches other sessions.
func (c *Client) handleEvent(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch env.Type {
	case EventJoinRoom:
		var p JoinRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ConversationID == "" {
			c.sendError("Invalid conversationId")
			return
		}
		c.hub.Join(c, p.ConversationID)

	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("Invalid message payload")
			return
		}
		c.handleSendMessage(ctx, p)

	case EventStartDM:
		var p StartDMPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("Invalid otherId")
			return
		}
		c.handleStartDM(ctx, p)

	case EventCreateGroup:
		var p CreateGroupPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			c.sendError("Invalid group payload")
			return
		}
		c.handleCreateGroup(ctx, p)

	default:
		c.sendError("Unknown event type: " + env.Type)
	}
}

func (c *Client) handleSendMessage(ctx context.Context, p SendMessagePayload) {
	msg, err := c.hub.chat.Send(ctx, c.userID, p.ConversationID, p.Text)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.sendError("Message text and conversationId are required")
		return
	}
	if err != nil {
		// Store trouble must not take down the hub or leak into other
		// sessions; the missing broadcast is the caller's only signal.
		log.Printf("Failed to persist message from user %s: %v", c.userID, err)
		return
	}

	c.hub.Broadcast(p.ConversationID, EventMessage, MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Text:           msg.Text,
		SenderID:       msg.SenderID,
		CreatedAt:      msg.CreatedAt,
	})

	if c.hub.notifier != nil {
		c.hub.notifier.MessageSent(msg.ConversationID, msg.SenderID, msg.Text)
	}
}

func (c *Client) handleStartDM(ctx context.Context, p StartDMPayload) {
	id, err := c.hub.chat.ResolveDirect(ctx, c.userID, p.OtherID)
	if errors.Is(err, chat.ErrInvalidTarget) {
		c.sendError("Invalid otherId")
		return
	}
	if err != nil {
		log.Printf("Failed to resolve DM for user %s: %v", c.userID, err)
		return
	}
	c.sendEvent(EventDMReady, ReadyPayload{ConversationID: id})
}

func (c *Client) handleCreateGroup(ctx context.Context, p CreateGroupPayload) {
	id, err := c.hub.chat.ResolveGroup(ctx, c.userID, p.Name, p.MemberIDs)
	if errors.Is(err, chat.ErrNoMembers) {
		c.sendError("No members provided")
		return
	}
	if err != nil {
		log.Printf("Failed to create group for user %s: %v", c.userID, err)
		return
	}
	c.sendEvent(EventGroupReady, ReadyPayload{ConversationID: id})
}

// sendEvent queues an event for this connection only.
func (c *Client) sendEvent(eventType string, payload any) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", eventType, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Dropping %s event for slow client (user %s)", eventType, c.userID)
	}
}

func (c *Client) sendError(message string) {
	c.sendEvent(EventError, ErrorPayload{Message: message})
}
