package http

import (
	"errors"
	"net/http"

	"pixelfeed/internal/handler/http/middleware"
	"pixelfeed/internal/services/likes"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likes *likes.Likes
}

func NewLikeHandler(likesService *likes.Likes) *LikeHandler {
	return &LikeHandler{likes: likesService}
}

type rateRequest struct {
	PostID string `json:"postId" binding:"required"`
	Value  int    `json:"value" binding:"required"`
}

// Create handles POST /likes.
func (h *LikeHandler) Create(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "postId and value are required")
		return
	}

	owner := c.GetString(middleware.ContextUserIDKey)

	like, err := h.likes.Rate(c.Request.Context(), owner, req.PostID, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, likes.ErrInvalidValue):
			errorResponse(c, http.StatusBadRequest, "value must be 1 or -1")
		case errors.Is(err, likes.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "post not found")
		case errors.Is(err, likes.ErrAlreadyLiked):
			errorResponse(c, http.StatusBadRequest, "post already liked")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, like)
}

// Delete handles DELETE /likes/:id.
func (h *LikeHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.likes.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, likes.ErrLikeNotFound):
			errorResponse(c, http.StatusNotFound, "like not found")
		case errors.Is(err, likes.ErrNotOwner):
			errorResponse(c, http.StatusForbidden, "unauthorized")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "like removed"})
}

// ByUser handles GET /likes/getByUserId — the authenticated user's likes.
func (h *LikeHandler) ByUser(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	result, err := h.likes.ByOwner(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ByUserAndPost handles GET /likes/getByUserAndPost?postId=... and reports
// whether the authenticated user has already reacted to the post.
func (h *LikeHandler) ByUserAndPost(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		errorResponse(c, http.StatusBadRequest, "postId is required")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)

	liked, err := h.likes.HasLiked(c.Request.Context(), userID, postID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}
