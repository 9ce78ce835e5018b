package jwt

import (
	"fmt"
	"pixelfeed/internal/domain/models"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by both access and refresh tokens.
type Claims struct {
	UserID   string
	UserName string
}

// GenerateToken signs a JWT for the user with the given secret and lifetime.
// The nonce makes two tokens issued in the same instant distinct.
func GenerateToken(
	user *models.User,
	secret string,
	duration time.Duration,
	nonce string,
) (string, error) {
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.MapClaims{
			"uid":       user.ID,
			"user_name": user.UserName,
			"nonce":     nonce,
			"exp":       time.Now().Add(duration).Unix(),
		})
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and returns the embedded identity.
func ParseToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("invalid token: missing uid claim")
	}
	userName, _ := claims["user_name"].(string)

	return &Claims{
		UserID:   uid,
		UserName: userName,
	}, nil
}
