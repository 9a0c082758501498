package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"linkup/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	dmPrefix         = "dm"
	defaultGroupName = "New Group"
)

var (
	// ErrInvalidTarget is returned by ResolveDirect when no counterpart id
	// was supplied.
	ErrInvalidTarget = errors.New("invalid otherId")
	// ErrNoMembers is returned by ResolveGroup for an empty member list.
	ErrNoMembers = errors.New("no members provided")
	// ErrEmptyMessage is returned by Send when the conversation id or text
	// is blank.
	ErrEmptyMessage = errors.New("empty conversation id or text")
	// ErrNotMember is returned by the read path when the requester is not
	// in the conversation's member list.
	ErrNotMember = errors.New("not a conversation member")
	// ErrNotFound is returned by the read path for an unknown conversation.
	ErrNotFound = errors.New("conversation not found")
)

// Store is the persistence contract the service needs. The Mongo
// implementation lives in the store package; tests use an in-memory fake.
type Store interface {
	EnsureDirect(ctx context.Context, id string, members []string, createdAt time.Time) error
	CreateGroup(ctx context.Context, conv *models.Conversation) error
	Get(ctx context.Context, id string) (*models.Conversation, error)
	ListByMember(ctx context.Context, participantID string) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
	SetLastMessage(ctx context.Context, conversationID, text string, at time.Time) error
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// ProfileDirectory looks up a participant's public profile. Returning
// (nil, nil) means the participant is unknown and a fallback label applies.
type ProfileDirectory interface {
	Profile(ctx context.Context, participantID string) (*models.PublicProfile, error)
}

// Service implements conversation resolution, the message pipeline and the
// conversation listing on top of a Store.
type Service struct {
	store    Store
	profiles ProfileDirectory
	now      func() time.Time
}

func NewService(store Store, profiles ProfileDirectory) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		now:      time.Now,
	}
}

// DirectID derives the deterministic conversation id for an unordered pair
// of participants. Sorting before joining guarantees both sides of the pair
// compute the same id, so at most one direct conversation can exist per pair.
func DirectID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(append([]string{dmPrefix}, pair...), "_")
}

// ResolveDirect returns the conversation id for a direct conversation
// between requester and other, creating the metadata document on first use.
// The create is an idempotent upsert: concurrent calls for the same pair
// converge on one document and never overwrite its createdAt.
func (s *Service) ResolveDirect(ctx context.Context, requesterID, otherID string) (string, error) {
	if strings.TrimSpace(otherID) == "" {
		return "", ErrInvalidTarget
	}

	a := strings.TrimSpace(requesterID)
	b := strings.TrimSpace(otherID)
	id := DirectID(a, b)

	members := []string{a, b}
	sort.Strings(members)

	if err := s.store.EnsureDirect(ctx, id, members, s.now().UTC()); err != nil {
		return "", fmt.Errorf("ensure direct conversation: %w", err)
	}
	return id, nil
}

// ResolveGroup creates a new group conversation. Group ids are opaque and
// never deduplicated: calling twice with identical arguments yields two
// distinct conversations. The creator is always a member, duplicates in the
// input are collapsed, and a blank name falls back to a placeholder.
func (s *Service) ResolveGroup(ctx context.Context, creatorID, name string, memberIDs []string) (string, error) {
	if len(memberIDs) == 0 {
		return "", ErrNoMembers
	}

	members := make([]string, 0, len(memberIDs)+1)
	members = append(members, strings.TrimSpace(creatorID))
	for _, m := range memberIDs {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			members = append(members, trimmed)
		}
	}
	members = lo.Uniq(members)

	if strings.TrimSpace(name) == "" {
		name = defaultGroupName
	}

	conv := &models.Conversation{
		ID:        uuid.NewString(),
		IsGroup:   true,
		Name:      name,
		Members:   members,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.CreateGroup(ctx, conv); err != nil {
		return "", fmt.Errorf("create group conversation: %w", err)
	}
	return conv.ID, nil
}

// Send validates, persists and reflects a message into the conversation's
// projection fields. The sender id must come from the authenticated
// connection, never from client input. The log append and the projection
// update are two separate writes; a failure between them leaves the log
// authoritative and the projection stale, which the listing tolerates.
func (s *Service) Send(ctx context.Context, senderID, conversationID, text string) (*models.Message, error) {
	if conversationID == "" || text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	if err := s.store.SetLastMessage(ctx, conversationID, text, msg.CreatedAt); err != nil {
		// The message is durably logged; a stale projection is acceptable.
		log.Printf("Failed to update conversation projection for %s: %v", conversationID, err)
	}

	return msg, nil
}

// List assembles the participant's conversation list, newest activity first.
// Direct conversations are labelled with the counterpart's profile; a
// malformed record or failed lookup degrades to a fallback label instead of
// failing the whole listing.
func (s *Service) List(ctx context.Context, participantID string) ([]models.ConversationSummary, error) {
	convs, err := s.store.ListByMember(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := models.ConversationSummary{
			ID:            conv.ID,
			IsGroup:       conv.IsGroup,
			Name:          conv.Name,
			Members:       conv.Members,
			LastMessage:   conv.LastMessage,
			LastUpdatedAt: conv.LastUpdatedAt,
		}

		if !conv.IsGroup {
			s.enrichDirect(ctx, participantID, &summary)
		}

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return lastActivity(summaries[i]) > lastActivity(summaries[j])
	})

	return summaries, nil
}

// enrichDirect resolves the counterpart of a direct conversation and sets
// the display name. Records without exactly one counterpart are left alone.
func (s *Service) enrichDirect(ctx context.Context, participantID string, summary *models.ConversationSummary) {
	others := lo.Filter(summary.Members, func(m string, _ int) bool {
		return m != participantID
	})
	if len(others) != 1 {
		return
	}
	otherID := others[0]

	profile, err := s.profiles.Profile(ctx, otherID)
	if err != nil {
		log.Printf("Profile lookup failed for %s: %v", otherID, err)
		profile = nil
	}
	if profile == nil {
		profile = &models.PublicProfile{ID: otherID, Name: "User " + otherID}
	}

	summary.DMWith = profile
	summary.Name = profile.Name
}

func lastActivity(s models.ConversationSummary) int64 {
	if s.LastUpdatedAt == nil {
		return 0
	}
	return s.LastUpdatedAt.UnixNano()
}

// Messages returns a conversation's log oldest first, after checking the
// requester actually belongs to it.
func (s *Service) Messages(ctx context.Context, requesterID, conversationID string) ([]models.Message, error) {
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrNotFound
	}
	if !lo.Contains(conv.Members, requesterID) {
		return nil, ErrNotMember
	}

	msgs, err := s.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	return msgs, nil
}
