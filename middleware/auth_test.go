package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID string, secret string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", JWTAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId")})
	})
	return router
}

func TestJWTAuth_ValidBearerToken(t *testing.T) {
	req := require.New(t)
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", testSecret, time.Hour))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "user-1")
}

func TestJWTAuth_TokenQueryFallback(t *testing.T) {
	req := require.New(t)
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/whoami?token="+signToken(t, "user-1", testSecret, time.Hour), nil)
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	req := require.New(t)
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	req := require.New(t)
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", testSecret, -time.Hour))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	req := require.New(t)
	router := newProtectedRouter()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "other-secret", time.Hour))
	router.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}
