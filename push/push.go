package push

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"linkup/models"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ConversationGetter loads conversation metadata; (nil, nil) means unknown.
type ConversationGetter interface {
	Get(ctx context.Context, id string) (*models.Conversation, error)
}

// Presence reports whether a participant has a live realtime connection.
type Presence interface {
	Online(participantID string) bool
}

// Options carries the VAPID key pair. An empty private key disables the
// notifier entirely.
type Options struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// Notifier sends best-effort web-push notifications to conversation members
// who are not currently connected. Failures are logged and never surface to
// the message pipeline.
type Notifier struct {
	subs     *mongo.Collection
	convs    ConversationGetter
	presence Presence
	opts     Options
}

func NewNotifier(subs *mongo.Collection, convs ConversationGetter, presence Presence, opts Options) *Notifier {
	return &Notifier{subs: subs, convs: convs, presence: presence, opts: opts}
}

// MessageSent fans a notification out to offline members. It returns
// immediately; the work happens in a background goroutine.
func (n *Notifier) MessageSent(conversationID, senderID, text string) {
	if n.opts.VAPIDPrivateKey == "" {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in push notification: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		conv, err := n.convs.Get(ctx, conversationID)
		if err != nil || conv == nil {
			log.Printf("Push: failed to load conversation %s: %v", conversationID, err)
			return
		}

		payload, _ := json.Marshal(map[string]string{
			"title": "New message",
			"body":  text,
		})

		for _, memberID := range conv.Members {
			if memberID == senderID || n.presence.Online(memberID) {
				continue
			}

			var sub models.PushSubscription
			err := n.subs.FindOne(ctx, bson.M{"userId": memberID}).Decode(&sub)
			if err == mongo.ErrNoDocuments {
				continue
			}
			if err != nil {
				log.Printf("Push: failed to load subscription for %s: %v", memberID, err)
				continue
			}

			resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
				Subscriber:      n.opts.Subscriber,
				VAPIDPublicKey:  n.opts.VAPIDPublicKey,
				VAPIDPrivateKey: n.opts.VAPIDPrivateKey,
				TTL:             30,
			})
			if err != nil {
				log.Printf("Push: failed to notify %s: %v", memberID, err)
				continue
			}
			resp.Body.Close()
		}
	}()
}
