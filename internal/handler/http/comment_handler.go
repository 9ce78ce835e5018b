package http

import (
	"errors"
	"net/http"
	"strconv"

	"pixelfeed/internal/handler/http/middleware"
	"pixelfeed/internal/services/auth"
	"pixelfeed/internal/services/comments"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *comments.Comments
	auth     *auth.Auth
}

func NewCommentHandler(commentsService *comments.Comments, authService *auth.Auth) *CommentHandler {
	return &CommentHandler{comments: commentsService, auth: authService}
}

type createCommentRequest struct {
	PostID  string `json:"postId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Create handles POST /comments.
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "postId and content are required")
		return
	}

	owner, err := h.auth.UserInfo(c.Request.Context(), c.GetString(middleware.ContextUserIDKey))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), owner, req.PostID, req.Content)
	if err != nil {
		if errors.Is(err, comments.ErrPostNotFound) {
			errorResponse(c, http.StatusNotFound, "post not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Get handles GET /comments/:id.
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, comments.ErrCommentNotFound) {
			errorResponse(c, http.StatusNotFound, "comment not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, comment)
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Update handles PUT /comments/:id.
func (h *CommentHandler) Update(c *gin.Context) {
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "content is required")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)

	comment, err := h.comments.Update(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, comments.ErrCommentNotFound):
			errorResponse(c, http.StatusNotFound, "comment not found")
		case errors.Is(err, comments.ErrNotAllowed):
			errorResponse(c, http.StatusForbidden, "unauthorized")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /comments/:id.
func (h *CommentHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.comments.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, comments.ErrCommentNotFound):
			errorResponse(c, http.StatusNotFound, "comment not found")
		case errors.Is(err, comments.ErrNotAllowed):
			errorResponse(c, http.StatusForbidden, "unauthorized")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

// ByPost handles GET /comments/getByPostId/:postId/:page/:limit.
func (h *CommentHandler) ByPost(c *gin.Context) {
	page, err1 := strconv.ParseInt(c.Param("page"), 10, 64)
	limit, err2 := strconv.ParseInt(c.Param("limit"), 10, 64)
	if err1 != nil || err2 != nil {
		errorResponse(c, http.StatusBadRequest, "invalid page or limit value")
		return
	}

	result, err := h.comments.ByPost(c.Request.Context(), c.Param("postId"), page, limit)
	if err != nil {
		if errors.Is(err, comments.ErrInvalidPage) {
			errorResponse(c, http.StatusBadRequest, "invalid page or limit value")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":      result.Comments,
		"totalPages":    result.TotalPages,
		"currentPage":   result.CurrentPage,
		"totalComments": result.TotalComments,
	})
}

// ByUser handles GET /comments/getByUserId — the authenticated user's comments.
func (h *CommentHandler) ByUser(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	result, err := h.comments.ByOwner(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}
