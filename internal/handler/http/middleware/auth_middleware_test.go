package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pixelfeed/internal/lib/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims *jwt.Claims
	err    error
}

func (s *stubVerifier) VerifyAccessToken(string) (*jwt.Claims, error) {
	return s.claims, s.err
}

func newGatedRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString(ContextUserIDKey),
			"userName": c.GetString(ContextUserNameKey),
		})
	})
	return router
}

func TestAuthMissingTokenIsUnauthorized(t *testing.T) {
	router := newGatedRouter(&stubVerifier{claims: &jwt.Claims{}})

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthBadTokenIsForbidden(t *testing.T) {
	router := newGatedRouter(&stubVerifier{err: errors.New("signature invalid")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some.tampered.token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// distinguishable from the missing-token case
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthSetsIdentity(t *testing.T) {
	router := newGatedRouter(&stubVerifier{claims: &jwt.Claims{UserID: "user-1", UserName: "alice"}})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good.token.here")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userID":"user-1","userName":"alice"}`, rec.Body.String())
}

func TestBearerTokenParsing(t *testing.T) {
	token, ok := bearerToken("Bearer abc123")
	require.True(t, ok)
	assert.Equal(t, "abc123", token)

	// scheme match is case-insensitive
	token, ok = bearerToken("bearer xyz")
	require.True(t, ok)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "abc123", "Bearer ", "Token abc"} {
		_, ok := bearerToken(header)
		assert.False(t, ok, "header %q", header)
	}
}
