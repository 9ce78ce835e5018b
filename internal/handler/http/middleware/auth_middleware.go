package middleware

import (
	"net/http"
	"strings"

	"pixelfeed/internal/lib/jwt"

	"github.com/gin-gonic/gin"
)

const (
	authHeaderKey  = "Authorization"
	authTypeBearer = "bearer"

	// ContextUserIDKey and ContextUserNameKey hold the authenticated
	// identity for downstream handlers.
	ContextUserIDKey   = "userID"
	ContextUserNameKey = "userName"
)

// TokenVerifier is the stateless access-token check.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// Auth gates a route group on a bearer access token. A missing header is
// rejected as unauthenticated (401); a header that fails verification is
// rejected as forbidden (403). The two cases stay distinguishable so clients
// know whether to show a login screen or force a re-login.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(authHeaderKey))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token verification failed"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserNameKey, claims.UserName)

		c.Next()
	}
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(c *gin.Context) (string, bool) {
	return bearerToken(c.GetHeader(authHeaderKey))
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != authTypeBearer || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
