package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// FeedbackHandler handles the product feedback endpoint.
type FeedbackHandler struct {
	feedbackService core.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(fs core.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: fs}
}

// SubmitFeedback handles POST /feedback. Write-only from the app's
// perspective; there is no read endpoint.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	feedback, err := h.feedbackService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrEmptyFeedback) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrEmptyFeedback.Error()})
			return
		}
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
		return
	}
	c.JSON(http.StatusCreated, feedback)
}
