package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"linkup/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	profiles map[string]*models.PublicProfile
}

func (d *fakeDirectory) Profile(_ context.Context, participantID string) (*models.PublicProfile, error) {
	return d.profiles[participantID], nil
}

func signHandshakeToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func knownUsers(ids ...string) *fakeDirectory {
	d := &fakeDirectory{profiles: map[string]*models.PublicProfile{}}
	for _, id := range ids {
		d.profiles[id] = &models.PublicProfile{ID: id, Name: "User " + id}
	}
	return d
}

func TestServeWS_RefusesMissingCredential(t *testing.T) {
	req := require.New(t)
	handler := ServeWS(newTestHub(), &JWTResolver{Secret: "s", Users: knownUsers()})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Equal("no credential provided", strings.TrimSpace(rec.Body.String()))
}

func TestServeWS_RefusesBadToken(t *testing.T) {
	req := require.New(t)
	handler := ServeWS(newTestHub(), &JWTResolver{Secret: "s", Users: knownUsers()})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ws?token=not-a-token", nil))

	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Equal("unauthorized", strings.TrimSpace(rec.Body.String()))
}

func TestServeWS_RefusesUnknownParticipant(t *testing.T) {
	req := require.New(t)
	handler := ServeWS(newTestHub(), &JWTResolver{Secret: "s", Users: knownUsers()})

	token := signHandshakeToken(t, "s", "ghost", time.Hour)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))

	req.Equal(http.StatusForbidden, rec.Code)
	req.Equal("participant not found", strings.TrimSpace(rec.Body.String()))
}

func TestJWTResolver_RejectsExpiredAndForeignTokens(t *testing.T) {
	req := require.New(t)
	resolver := &JWTResolver{Secret: "s", Users: knownUsers("u1")}

	expired := signHandshakeToken(t, "s", "u1", -time.Minute)
	_, err := resolver.Resolve(context.Background(), expired)
	req.ErrorIs(err, ErrUnauthorized)

	foreign := signHandshakeToken(t, "other-secret", "u1", time.Hour)
	_, err = resolver.Resolve(context.Background(), foreign)
	req.ErrorIs(err, ErrUnauthorized)
}

func TestJWTResolver_ResolvesKnownParticipant(t *testing.T) {
	req := require.New(t)
	resolver := &JWTResolver{Secret: "s", Users: knownUsers("u1")}

	token := signHandshakeToken(t, "s", "u1", time.Hour)
	id, err := resolver.Resolve(context.Background(), token)
	req.NoError(err)
	req.Equal("u1", id)
}

func TestServeWS_BindsParticipantIdentity(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	go hub.Run()

	srv := httptest.NewServer(ServeWS(hub, &JWTResolver{Secret: "s", Users: knownUsers("u1")}))
	defer srv.Close()

	token := signHandshakeToken(t, "s", "u1", time.Hour)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The identity from the token, not anything the client sent, is what
	// presence sees.
	req.Eventually(func() bool { return hub.Online("u1") }, time.Second, 10*time.Millisecond)
}
