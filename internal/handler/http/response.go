package http

import (
	"pixelfeed/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

type userResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	UserName        string `json:"userName"`
	ProfileImageURL string `json:"profileImageUrl"`
	IsGoogleSignIn  bool   `json:"isGoogleSignIn"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:              user.ID,
		Email:           user.Email,
		UserName:        user.UserName,
		ProfileImageURL: user.ProfileImageURL,
		IsGoogleSignIn:  user.Credential.IsExternal(),
	}
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// setSessionCookies mirrors the token pair into cookies whose lifetimes
// match the token validity windows exactly.
func setSessionCookies(c *gin.Context, pair *models.TokenPair) {
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(pair.AccessTTL.Seconds()), "/", "", false, false)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", "", false, false)
}

func clearSessionCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", false, false)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", false, false)
}
