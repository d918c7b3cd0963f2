package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// InviteHandler handles circle invite API endpoints.
type InviteHandler struct {
	inviteService core.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(is core.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: is}
}

// mapInviteErrorToStatus maps errors from core.InviteService to HTTP status codes.
func mapInviteErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrInviteNotFound.Error()})
	case errors.Is(err, core.ErrCircleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrCircleNotFound.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbiddenAccess.Error()})
	case errors.Is(err, core.ErrCannotInviteSelf):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrCannotInviteSelf.Error()})
	case errors.Is(err, core.ErrDuplicateInvite):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrDuplicateInvite.Error()})
	case errors.Is(err, core.ErrAlreadyMember):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrAlreadyMember.Error()})
	case errors.Is(err, core.ErrInviteAlreadyResolved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrInviteAlreadyResolved.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// SendInvite handles POST /invites. Owner-only; the invitee is addressed by
// email and notified best-effort.
func (h *InviteHandler) SendInvite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	invite, err := h.inviteService.Send(c.Request.Context(), userID, req)
	if err != nil {
		mapInviteErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// ListReceivedInvites handles GET /invites/received.
func (h *InviteHandler) ListReceivedInvites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.ListReceived(c.Request.Context(), userID)
	if err != nil {
		mapInviteErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

// RespondToInvite handles POST /invites/:inviteId/respond. Accepting joins
// the circle.
func (h *InviteHandler) RespondToInvite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	inviteID := c.Param("inviteId")
	if inviteID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invite ID is required"})
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	invite, err := h.inviteService.Respond(c.Request.Context(), userID, inviteID, *req.Accept)
	if err != nil {
		mapInviteErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, invite)
}
