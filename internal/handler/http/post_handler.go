package http

import (
	"errors"
	"net/http"
	"strconv"

	"pixelfeed/internal/handler/http/middleware"
	"pixelfeed/internal/services/auth"
	"pixelfeed/internal/services/posts"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *posts.Posts
	auth  *auth.Auth
}

func NewPostHandler(postsService *posts.Posts, authService *auth.Auth) *PostHandler {
	return &PostHandler{posts: postsService, auth: authService}
}

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Photo   string `json:"photo"`
}

// Create handles POST /posts.
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "title and content are required")
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

	post, err := h.posts.Create(c.Request.Context(), owner, req.Title, req.Content, req.Photo)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// Get handles GET /posts/:id.
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			errorResponse(c, http.StatusNotFound, "post not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, post)
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Photo   string `json:"photo"`
}

// Update handles PUT /posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)

	post, err := h.posts.Update(c.Request.Context(), userID, c.Param("id"), req.Title, req.Content, req.Photo)
	if err != nil {
		switch {
		case errors.Is(err, posts.ErrNoData):
			errorResponse(c, http.StatusBadRequest, "no data to update")
		case errors.Is(err, posts.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "post not found")
		case errors.Is(err, posts.ErrNotOwner):
			errorResponse(c, http.StatusForbidden, "unauthorized")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	if err := h.posts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, posts.ErrPostNotFound):
			errorResponse(c, http.StatusNotFound, "post not found")
		case errors.Is(err, posts.ErrNotOwner):
			errorResponse(c, http.StatusForbidden, "unauthorized")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// Page handles GET /posts/getAllPagination/:page/:limit.
func (h *PostHandler) Page(c *gin.Context) {
	page, err1 := strconv.ParseInt(c.Param("page"), 10, 64)
	limit, err2 := strconv.ParseInt(c.Param("limit"), 10, 64)
	if err1 != nil || err2 != nil {
		errorResponse(c, http.StatusBadRequest, "invalid page or limit value")
		return
	}

	result, err := h.posts.Page(c.Request.Context(), page, limit)
	if err != nil {
		if errors.Is(err, posts.ErrInvalidPage) {
			errorResponse(c, http.StatusBadRequest, "invalid page or limit value")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       result.Posts,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
		"totalPosts":  result.TotalPosts,
	})
}

// ByUser handles GET /posts/getByUserId — the authenticated user's posts.
func (h *PostHandler) ByUser(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	result, err := h.posts.ByOwner(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, result)
}
