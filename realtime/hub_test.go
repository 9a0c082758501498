package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"linkup/chat"
	"linkup/models"

	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	sendErr error
}

func (f *fakeChat) ResolveDirect(_ context.Context, requesterID, otherID string) (string, error) {
	if otherID == "" {
		return "", chat.ErrInvalidTarget
	}
	return chat.DirectID(requesterID, otherID), nil
}

func (f *fakeChat) ResolveGroup(_ context.Context, _, _ string, memberIDs []string) (string, error) {
	if len(memberIDs) == 0 {
		return "", chat.ErrNoMembers
	}
	return "group-123", nil
}

func (f *fakeChat) Send(_ context.Context, senderID, conversationID, text string) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if conversationID == "" || text == "" {
		return nil, chat.ErrEmptyMessage
	}
	return &models.Message{
		ID:             "srv-0001",
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func newTestHub() *Hub {
	return NewHub(&fakeChat{})
}

func newTestClient(h *Hub, userID string) *Client {
	c := &Client{userID: userID, send: make(chan []byte, 8), hub: h}
	h.addClient(c)
	return c
}

// receiveEvent pops one queued event from the client or fails the test.
func receiveEvent(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("expected a queued event, got none")
		return Envelope{}
	}
}

func requireNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("expected no event, got %s", data)
	default:
	}
}

func event(t *testing.T, eventType string, payload any) Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{Type: eventType, Payload: raw}
}

func TestJoin_IsIdempotent(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	c := newTestClient(h, "1")

	h.Join(c, "dm_1_2")
	h.Join(c, "dm_1_2")

	req.Equal(1, h.roomSize("dm_1_2"))
}

func TestBroadcast_ReachesAllRoomMembersIncludingSender(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")
	b := newTestClient(h, "2")
	h.Join(a, "dm_1_2")
	h.Join(b, "dm_1_2")

	a.handleEvent(event(t, EventSendMessage, SendMessagePayload{ConversationID: "dm_1_2", Text: "hi"}))

	for _, c := range []*Client{a, b} {
		env := receiveEvent(t, c)
		req.Equal(EventMessage, env.Type)

		var p MessagePayload
		req.NoError(json.Unmarshal(env.Payload, &p))
		req.Equal("hi", p.Text)
		req.Equal("1", p.SenderID)
		req.Equal("dm_1_2", p.ConversationID)
		req.NotEmpty(p.ID)

		requireNoEvent(t, c)
	}
}

func TestBroadcast_IsScopedToTheRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h, "1")
	b := newTestClient(h, "2")
	h.Join(a, "dm_1_2")
	h.Join(b, "dm_2_3")

	h.Broadcast("dm_1_2", EventMessage, MessagePayload{ConversationID: "dm_1_2", Text: "x", SenderID: "1"})

	receiveEvent(t, a)
	requireNoEvent(t, b)
}

func TestDisconnect_RemovesClientFromAllRooms(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")
	b := newTestClient(h, "2")
	h.Join(a, "dm_1_2")
	h.Join(b, "dm_1_2")
	h.Join(a, "group-123")

	h.removeClient(a)

	req.Equal(1, h.roomSize("dm_1_2"))
	req.Equal(0, h.roomSize("group-123"))
	req.False(h.Online("1"))
	req.True(h.Online("2"))
}

func TestSendMessage_EmptyFieldsGetAnErrorEvent(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")
	h.Join(a, "dm_1_2")

	a.handleEvent(event(t, EventSendMessage, SendMessagePayload{ConversationID: "dm_1_2", Text: ""}))

	env := receiveEvent(t, a)
	req.Equal(EventError, env.Type)
	requireNoEvent(t, a)
}

func TestSendMessage_StoreFailureStaysLocal(t *testing.T) {
	req := require.New(t)
	h := NewHub(&fakeChat{sendErr: context.DeadlineExceeded})
	a := newTestClient(h, "1")
	b := newTestClient(h, "2")
	h.Join(a, "dm_1_2")
	h.Join(b, "dm_1_2")

	a.handleEvent(event(t, EventSendMessage, SendMessagePayload{ConversationID: "dm_1_2", Text: "hi"}))

	// No broadcast and no error event; the missing echo is the only signal.
	requireNoEvent(t, a)
	requireNoEvent(t, b)
	req.True(h.Online("2"))
}

func TestStartDM_RepliesOnlyToRequester(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")
	b := newTestClient(h, "2")

	a.handleEvent(event(t, EventStartDM, StartDMPayload{OtherID: "2"}))

	env := receiveEvent(t, a)
	req.Equal(EventDMReady, env.Type)

	var p ReadyPayload
	req.NoError(json.Unmarshal(env.Payload, &p))
	req.Equal("dm_1_2", p.ConversationID)

	requireNoEvent(t, b)
}

func TestStartDM_MissingTarget(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")

	a.handleEvent(event(t, EventStartDM, StartDMPayload{}))

	env := receiveEvent(t, a)
	req.Equal(EventError, env.Type)

	var p ErrorPayload
	req.NoError(json.Unmarshal(env.Payload, &p))
	req.Equal("Invalid otherId", p.Message)
}

func TestCreateGroup_ReadyAndValidation(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")

	a.handleEvent(event(t, EventCreateGroup, CreateGroupPayload{Name: "g", MemberIDs: []string{"2"}}))
	env := receiveEvent(t, a)
	req.Equal(EventGroupReady, env.Type)

	a.handleEvent(event(t, EventCreateGroup, CreateGroupPayload{Name: "g"}))
	env = receiveEvent(t, a)
	req.Equal(EventError, env.Type)

	var p ErrorPayload
	req.NoError(json.Unmarshal(env.Payload, &p))
	req.Equal("No members provided", p.Message)
}

func TestUnknownEventType(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")

	a.handleEvent(Envelope{Type: "typing", Payload: json.RawMessage(`{}`)})

	env := receiveEvent(t, a)
	req.Equal(EventError, env.Type)
}

func TestJoinRoom_RequiresConversationID(t *testing.T) {
	req := require.New(t)
	h := newTestHub()
	a := newTestClient(h, "1")

	a.handleEvent(event(t, EventJoinRoom, JoinRoomPayload{}))

	env := receiveEvent(t, a)
	req.Equal(EventError, env.Type)
	req.Equal(0, h.roomSize(""))
}
