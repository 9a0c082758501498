package realtime

import (
	"encoding/json"
	"time"
)

// Client -> server event types.
const (
	EventJoinRoom    = "joinRoom"
	EventSendMessage = "sendMessage"
	EventStartDM     = "startDM"
	EventCreateGroup = "createGroup"
)

// Server -> client event types.
const (
	EventMessage    = "message"
	EventDMReady    = "dmReady"
	EventGroupReady = "groupReady"
	EventError      = "error"
)

// Envelope is the wire frame for every event in both directions. Incoming
// payloads stay raw until the event type selects the struct to decode into,
// so required-field validation happens once at the boundary.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinRoomPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
}

type StartDMPayload struct {
	OtherID string `json:"otherId"`
}

type CreateGroupPayload struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// MessagePayload is the broadcast form of a sent message. The id and
// timestamp are server-assigned; senderId is always the authenticated
// identity of the sending connection.
type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Text           string    `json:"text"`
	SenderID       string    `json:"senderId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ReadyPayload struct {
	ConversationID string `json:"conversationId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// encodeEvent marshals an outbound event into a wire frame.
func encodeEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
