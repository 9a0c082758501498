package realtime

import (
	"context"
	"log"
	"sync"

	"linkup/models"
)

// ChatService is the slice of the chat layer the hub dispatches into.
type ChatService interface {
	ResolveDirect(ctx context.Context, requesterID, otherID string) (string, error)
	ResolveGroup(ctx context.Context, creatorID, name string, memberIDs []string) (string, error)
	Send(ctx context.Context, senderID, conversationID, text string) (*models.Message, error)
}

// Notifier receives a best-effort signal after a message was persisted and
// broadcast, so offline members can be reached out-of-band.
type Notifier interface {
	MessageSent(conversationID, senderID, text string)
}

// Hub owns every live connection and the rooms that scope message delivery.
// It is constructed once at startup and handed to the handlers that need it;
// there is no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	online  map[string]int

	register   chan *Client
	unregister chan *Client

	chat     ChatService
	notifier Notifier
}

func NewHub(chat ChatService) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		online:     make(map[string]int),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		chat:       chat,
	}
}

// SetNotifier attaches an optional out-of-band notifier. Must be called
// before Run.
func (h *Hub) SetNotifier(n Notifier) {
	h.notifier = n
}

// Run processes connection lifecycle events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
			log.Printf("✅ Client connected: user %s (%d online)", client.userID, h.ClientCount())

		case client := <-h.unregister:
			h.removeClient(client)
			log.Printf("❌ Client disconnected: user %s (%d online)", client.userID, h.ClientCount())
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.online[client.userID]++
}

// removeClient drops the connection from the client set and from every room
// it joined. Nothing is persisted; disconnection has no stored side effects.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for id, room := range h.rooms {
		if room[client] {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, id)
			}
		}
	}
	if h.online[client.userID] <= 1 {
		delete(h.online, client.userID)
	} else {
		h.online[client.userID]--
	}
	close(client.send)
}

// Join subscribes a connection to a conversation's room. Joining a room the
// connection is already in has no additional effect.
func (h *Hub) Join(client *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[conversationID] = room
	}
	room[client] = true
}

// Broadcast delivers an event to every connection currently joined to the
// conversation's room, the sender's own connection included. A member whose
// send buffer is full misses the event rather than stalling the room.
func (h *Hub) Broadcast(conversationID, eventType string, payload any) {
	data, err := encodeEvent(eventType, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[conversationID] {
		select {
		case client.send <- data:
		default:
			log.Printf("Dropping %s event for slow client (user %s)", eventType, client.userID)
		}
	}
}

// Online reports whether the participant has at least one live connection.
func (h *Hub) Online(participantID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[participantID] > 0
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// roomSize is used by tests to observe membership.
func (h *Hub) roomSize(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}
