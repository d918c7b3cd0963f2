package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// RatingHandler handles API endpoints for circle ratings.
type RatingHandler struct {
	ratingService core.RatingService
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(rs core.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: rs}
}

// mapRatingErrorToStatus maps errors from core.RatingService to HTTP status codes.
func mapRatingErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrSelfRating):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrSelfRating.Error()})
	case errors.Is(err, core.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidScore.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrUnknownTrait):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrUnknownTrait.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrCircleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCircleNotFound.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrMemberNotFound.Error()})
	case errors.Is(err, core.ErrNotCircleMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNotCircleMember.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// SubmitRating handles POST /circles/:circleId/ratings. Re-rating the same
// member replaces the earlier submission for this cycle.
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	circleID := c.Param("circleId")
	if circleID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Circle ID is required"})
		return
	}

	var req models.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), userID, circleID, req)
	if err != nil {
		mapRatingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// ListReceivedRatings handles GET /circles/:circleId/ratings/received.
func (h *RatingHandler) ListReceivedRatings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	circleID := c.Param("circleId")
	if circleID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Circle ID is required"})
		return
	}

	ratings, err := h.ratingService.ListReceived(c.Request.Context(), userID, circleID)
	if err != nil {
		mapRatingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// GetTraitBreakdown handles GET /ratings/breakdown/:trait. It returns the
// caller's per-circle slices for one trait, e.g. the eco-rating page.
func (h *RatingHandler) GetTraitBreakdown(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trait := c.Param("trait")
	if trait == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Trait is required"})
		return
	}

	breakdown, err := h.ratingService.GetTraitBreakdown(c.Request.Context(), userID, trait)
	if err != nil {
		mapRatingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
