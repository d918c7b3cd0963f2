package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProfileResponse is the payload for profile endpoints: the user document
// plus the capability set resolved from their tier, so clients gate features
// off one flag set instead of re-deriving tier logic.
type ProfileResponse struct {
	User         *models.User      `json:"user"`
	Capabilities core.Capabilities `json:"capabilities"`
	Created      bool              `json:"created,omitempty"` // true when this call provisioned the profile
}

// OverviewResponse is the presentation-shell payload: profile, capability
// flags and badge counts in one round trip.
type OverviewResponse struct {
	User         *models.User        `json:"user"`
	Capabilities core.Capabilities   `json:"capabilities"`
	Badges       *models.BadgeCounts `json:"badges"`
}

// CheckoutSessionResponse carries the billing provider session reference.
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// currentUserID extracts the authenticated user ID placed in the Gin context
// by the auth middleware. When the ID is missing the middleware did not run;
// the helper responds 401 and the handler must return immediately.
func currentUserID(c *gin.Context) (string, bool) {
	rawUserID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	userID, ok := rawUserID.(string)
	if !ok || userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID format in context"})
		return "", false
	}
	return userID, true
}
