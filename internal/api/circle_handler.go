package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// CircleHandler handles API endpoints related to circles.
type CircleHandler struct {
	circleService core.CircleService
}

// NewCircleHandler creates a new CircleHandler.
func NewCircleHandler(cs core.CircleService) *CircleHandler {
	return &CircleHandler{circleService: cs}
}

// mapCircleErrorToStatus maps errors from core.CircleService to HTTP status codes.
func mapCircleErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrCircleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCircleNotFound.Error()})
	case errors.Is(err, core.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrMemberNotFound.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbiddenAccess.Error()})
	case errors.Is(err, core.ErrNotCircleMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNotCircleMember.Error()})
	case errors.Is(err, core.ErrCannotRemoveOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrCannotRemoveOwner.Error()})
	case errors.Is(err, core.ErrInvalidCircleType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidCircleType.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// ListCircles handles GET /circles. Lists every circle the caller belongs to.
func (h *CircleHandler) ListCircles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	circles, err := h.circleService.ListMine(c.Request.Context(), userID)
	if err != nil {
		mapCircleErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, circles)
}

// CreateCircle handles POST /circles.
func (h *CircleHandler) CreateCircle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	circle, err := h.circleService.Create(c.Request.Context(), userID, req)
	if err != nil {
		mapCircleErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, circle)
}

// GetCircleDetail handles GET /circles/:circleId. The detail payload carries
// per-member flags (already rated, premium, removable by the viewer).
func (h *CircleHandler) GetCircleDetail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	circleID := c.Param("circleId")
	if circleID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Circle ID is required"})
		return
	}

	detail, err := h.circleService.GetDetail(c.Request.Context(), userID, circleID)
	if err != nil {
		mapCircleErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RemoveMember handles DELETE /circles/:circleId/members/:memberId.
// Owner-only; removal is irreversible.
func (h *CircleHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	circleID := c.Param("circleId")
	memberID := c.Param("memberId")
	if circleID == "" || memberID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Circle ID and member ID are required"})
		return
	}

	if err := h.circleService.RemoveMember(c.Request.Context(), userID, circleID, memberID); err != nil {
		mapCircleErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
