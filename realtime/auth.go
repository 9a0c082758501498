package realtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"linkup/chat"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// Handshake refusal reasons. The connection is refused before the upgrade,
// so the client sees them as an HTTP error on the websocket request.
var (
	ErrNoCredential       = errors.New("no credential provided")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnknownParticipant = errors.New("participant not found")
)

// IdentityResolver maps a credential token to a stable participant id.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// JWTResolver verifies an HS256 token and checks the subject still exists in
// the user directory before a connection is accepted.
type JWTResolver struct {
	Secret string
	Users  chat.ProfileDirectory
}

type wsClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (string, error) {
	claims := &wsClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(r.Secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrUnauthorized
	}

	profile, err := r.Users.Profile(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", ErrUnknownParticipant
	}

	return claims.UserID, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS authenticates the handshake, upgrades the connection and hands it
// to the hub. The resolved participant id is bound to the connection for its
// whole lifetime; no event may override it.
func ServeWS(hub *Hub, resolver IdentityResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			log.Printf("WebSocket connection rejected: no token provided")
			http.Error(w, ErrNoCredential.Error(), http.StatusUnauthorized)
			return
		}

		userID, err := resolver.Resolve(r.Context(), token)
		if err != nil {
			log.Printf("WebSocket auth failed: %v", err)
			switch {
			case errors.Is(err, ErrUnknownParticipant):
				http.Error(w, ErrUnknownParticipant.Error(), http.StatusForbidden)
			default:
				http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			}
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:   conn,
			userID: userID,
			send:   make(chan []byte, 256),
			hub:    hub,
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
