package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
)

// AuthHandler handles the post-login profile bootstrap endpoint.
type AuthHandler struct {
	userService core.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService) *AuthHandler {
	return &AuthHandler{userService: us}
}

// InitializeUserProfile handles POST /users/initialize. The client calls it
// after Firebase sign-in; the first call for an identity provisions the user
// document, the default circles and adopts any invites addressed to the
// identity's email. Subsequent calls just return the existing profile.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Identity claims set by the auth middleware. Email can be absent for
	// some providers; provisioning tolerates that (no invite adoption).
	email := c.GetString("userEmail")
	displayName := c.GetString("userDisplayName")
	photoURL := c.GetString("userPhotoURL")

	user, created, err := h.userService.InitializeProfile(c.Request.Context(), userID, email, displayName, photoURL)
	if err != nil {
		log.Printf("InitializeUserProfile Error: provisioning failed for userID %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize user profile", Details: err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, ProfileResponse{
		User:         user,
		Capabilities: core.ResolveCapabilities(user),
		Created:      created,
	})
}
