package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PhotoUploader is the slice of the photo store the handler needs.
type PhotoUploader interface {
	PresignedUploadURL(ctx context.Context) (key string, url string, err error)
}

type FileHandler struct {
	photos PhotoUploader
}

func NewFileHandler(photos PhotoUploader) *FileHandler {
	return &FileHandler{photos: photos}
}

// UploadURL handles GET /file/upload-url: clients PUT the photo bytes to the
// returned URL themselves, then record the key's public URL on the post.
func (h *FileHandler) UploadURL(c *gin.Context) {
	key, url, err := h.photos.PresignedUploadURL(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to create upload url")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":       key,
		"uploadUrl": url,
	})
}
