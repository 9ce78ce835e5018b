package jwt

import (
	"testing"
	"time"

	"pixelfeed/internal/domain/models"

	"github.com/brianvoe/gofakeit/v6"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:       gofakeit.UUID(),
		Email:    gofakeit.Email(),
		UserName: gofakeit.Username(),
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	user := testUser()
	secret := gofakeit.Password(true, true, true, false, false, 32)

	issued := time.Now()
	token, err := GenerateToken(user, secret, time.Hour, "nonce-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.UserName, claims.UserName)

	parsed, err := jwtlib.Parse(token, func(token *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "nonce-1", mapClaims["nonce"])

	const deltaSeconds = 2
	assert.InDelta(t, issued.Add(time.Hour).Unix(), mapClaims["exp"].(float64), deltaSeconds)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testUser(), "right-secret", time.Hour, "nonce")
	require.NoError(t, err)

	_, err = ParseToken(token, "wrong-secret")
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(testUser(), "secret", -time.Minute, "nonce")
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	require.Error(t, err)
}

func TestParseTokenMissingUID(t *testing.T) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"user_name": "someone",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(signed, "secret")
	require.Error(t, err)
}

func TestNonceMakesTokensDistinct(t *testing.T) {
	user := testUser()

	first, err := GenerateToken(user, "secret", time.Hour, "nonce-a")
	require.NoError(t, err)
	second, err := GenerateToken(user, "secret", time.Hour, "nonce-b")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
