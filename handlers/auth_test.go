package handlers

import (
	"testing"
	"time"

	"linkup/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func parseIssued(t *testing.T, secret, token string) *middleware.Claims {
	t.Helper()
	claims := &middleware.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}

func TestIssueToken_CarriesUserIDAndConfiguredTTL(t *testing.T) {
	req := require.New(t)
	h := NewAuthHandler("top-secret", time.Hour)

	token, err := h.issueToken("u1")
	req.NoError(err)

	claims := parseIssued(t, "top-secret", token)
	req.Equal("u1", claims.UserID)
	req.WithinDuration(time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestNewAuthHandler_DefaultsTheTTL(t *testing.T) {
	req := require.New(t)
	h := NewAuthHandler("top-secret", 0)

	token, err := h.issueToken("u1")
	req.NoError(err)

	claims := parseIssued(t, "top-secret", token)
	req.WithinDuration(time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}
