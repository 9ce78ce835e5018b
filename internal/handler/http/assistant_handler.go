package http

import (
	"errors"
	"net/http"

	"pixelfeed/internal/services/assistant"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	assistant *assistant.Assistant
}

func NewAssistantHandler(assistantService *assistant.Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistantService}
}

type suggestRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Suggest handles POST /ai: forwards the prompt to the caption generator and
// returns its reply verbatim.
func (h *AssistantHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "prompt is required")
		return
	}

	reply, err := h.assistant.Suggest(c.Request.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyPrompt):
			errorResponse(c, http.StatusBadRequest, "prompt is required")
		case errors.Is(err, assistant.ErrUnavailable):
			errorResponse(c, http.StatusBadGateway, "assistant unavailable")
		default:
			errorResponse(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
