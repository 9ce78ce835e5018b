package http

import (
	"errors"
	"net/http"

	"pixelfeed/internal/handler/http/middleware"
	"pixelfeed/internal/services/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes registration, login and the session-token lifecycle.
type AuthHandler struct {
	auth *auth.Auth
}

func NewAuthHandler(authService *auth.Auth) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type registerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	UserName        string `json:"userName" binding:"required"`
	ProfileImageURL string `json:"profileImageUrl" binding:"required"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "email, password, name and profile image are required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.UserName, req.ProfileImageURL)
	if err != nil {
		if errors.Is(err, auth.ErrUserAlreadyExists) {
			errorResponse(c, http.StatusBadRequest, "user already exists")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			errorResponse(c, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, auth.ErrMisconfigured):
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	setSessionCookies(c, pair)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type googleSignInRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// GoogleSignIn handles POST /auth/google.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "credential is required")
		return
	}

	pair, err := h.auth.GoogleSignIn(c.Request.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			errorResponse(c, http.StatusUnauthorized, "google sign-in failed")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	setSessionCookies(c, pair)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles GET /auth/refresh. The refresh token travels in the
// authorization header, exactly like an access token would.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "no token provided")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			errorResponse(c, http.StatusForbidden, "wrong refresh token")
		case errors.Is(err, auth.ErrNoMatchingToken):
			errorResponse(c, http.StatusForbidden, "no matching token")
		case errors.Is(err, auth.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "user not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	setSessionCookies(c, pair)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "no token provided")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			errorResponse(c, http.StatusForbidden, "token verification failed")
		case errors.Is(err, auth.ErrNoMatchingToken):
			errorResponse(c, http.StatusForbidden, "no matching token")
		case errors.Is(err, auth.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "user not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// UserInfo handles GET /auth/getUserInfo.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	user, err := h.auth.UserInfo(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// PublicProfile handles GET /auth/profile/:userId — just the name and the
// avatar, for rendering other users' content.
func (h *AuthHandler) PublicProfile(c *gin.Context) {
	user, err := h.auth.UserInfo(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userName":        user.UserName,
		"profileImageUrl": user.ProfileImageURL,
	})
}

type updateProfileRequest struct {
	Password        string `json:"password"`
	Email           string `json:"email"`
	UserName        string `json:"userName"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// UpdateProfile handles PUT /auth/update.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, req.Password, req.Email, req.UserName, req.ProfileImageURL)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			errorResponse(c, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, auth.ErrUserAlreadyExists):
			errorResponse(c, http.StatusBadRequest, "email or username already exists")
		case errors.Is(err, auth.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "user not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword handles PUT /auth/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "old and new password are required")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			errorResponse(c, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, auth.ErrExternalAccount):
			errorResponse(c, http.StatusBadRequest, "account has no local password")
		case errors.Is(err, auth.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "user not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount handles DELETE /auth/delete.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req deleteAccountRequest
	_ = c.ShouldBindJSON(&req)

	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.auth.DeleteAccount(c.Request.Context(), userID, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			errorResponse(c, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, auth.ErrUserNotFound):
			errorResponse(c, http.StatusNotFound, "user not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	clearSessionCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
