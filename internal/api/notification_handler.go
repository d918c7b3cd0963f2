package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
)

// NotificationHandler handles the badge count aggregation endpoint.
type NotificationHandler struct {
	notificationService core.NotificationService
	userService         core.UserService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(ns core.NotificationService, us core.UserService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns, userService: us}
}

// GetBadgeCounts handles GET /notifications/badges. The client calls it on
// every navigation; each call is a full re-fetch, no caching. An aggregation
// failure returns an error and no partial counts, so the client keeps (or
// zeroes) its previous badges.
func (h *NotificationHandler) GetBadgeCounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// The aggregator needs the profile for the premium short-circuit.
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	counts, err := h.notificationService.GetBadgeCounts(c.Request.Context(), user)
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GetOverview handles GET /users/me/overview. It bundles the profile, the
// resolved capability set and the badge counts so the presentation shell
// renders off a single round trip.
func (h *NotificationHandler) GetOverview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	counts, err := h.notificationService.GetBadgeCounts(c.Request.Context(), user)
	if err != nil {
		mapUserErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, OverviewResponse{
		User:         user,
		Capabilities: core.ResolveCapabilities(user),
		Badges:       counts,
	})
}
