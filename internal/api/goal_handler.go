package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// GoalHandler handles family goal API endpoints.
type GoalHandler struct {
	goalService core.GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(gs core.GoalService) *GoalHandler {
	return &GoalHandler{goalService: gs}
}

// mapGoalErrorToStatus maps errors from core.GoalService to HTTP status codes.
func mapGoalErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrPremiumRequired):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: core.ErrPremiumRequired.Error()})
	case errors.Is(err, core.ErrGoalNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrGoalNotFound.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrCircleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCircleNotFound.Error()})
	case errors.Is(err, core.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrMemberNotFound.Error()})
	case errors.Is(err, core.ErrNotFamilyCircle):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrNotFamilyCircle.Error()})
	case errors.Is(err, core.ErrSelfGoal):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrSelfGoal.Error()})
	case errors.Is(err, core.ErrUnknownTrait):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrUnknownTrait.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrNotCircleMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNotCircleMember.Error()})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbiddenAccess.Error()})
	case errors.Is(err, core.ErrGoalAlreadyResolved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrGoalAlreadyResolved.Error()})
	case errors.Is(err, core.ErrGoalNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrGoalNotActive.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// SuggestGoal handles POST /goals. The coaching tip is generated best-effort;
// a tip provider outage never fails the suggestion.
func (h *GoalHandler) SuggestGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SuggestGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	goal, err := h.goalService.SuggestGoal(c.Request.Context(), userID, req)
	if err != nil {
		mapGoalErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// ListGoals handles GET /goals. Returns every goal the caller participates in.
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), userID)
	if err != nil {
		mapGoalErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

// RespondToGoal handles POST /goals/:goalId/respond. Accepting moves the
// goal to active, declining ends it.
func (h *GoalHandler) RespondToGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID := c.Param("goalId")
	if goalID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Goal ID is required"})
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	goal, err := h.goalService.Respond(c.Request.Context(), userID, goalID, *req.Accept)
	if err != nil {
		mapGoalErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// CompleteGoal handles POST /goals/:goalId/complete.
func (h *GoalHandler) CompleteGoal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	goalID := c.Param("goalId")
	if goalID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Goal ID is required"})
		return
	}

	goal, err := h.goalService.Complete(c.Request.Context(), userID, goalID)
	if err != nil {
		mapGoalErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}
