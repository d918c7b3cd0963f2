package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
	"mirrornet-backend-go/internal/models"
)

// AttractionHandler handles the premium attraction rating endpoints and the
// anonymity-reveal workflow built on top of them.
type AttractionHandler struct {
	attractionService core.AttractionService
}

// NewAttractionHandler creates a new AttractionHandler.
func NewAttractionHandler(as core.AttractionService) *AttractionHandler {
	return &AttractionHandler{attractionService: as}
}

// mapAttractionErrorToStatus maps errors from core.AttractionService to HTTP status codes.
func mapAttractionErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrPremiumRequired):
		// 402 signals the paywall to the client, matching the billing flow.
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: core.ErrPremiumRequired.Error()})
	case errors.Is(err, core.ErrNoRevealTokens):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: core.ErrNoRevealTokens.Error()})
	case errors.Is(err, core.ErrSelfRating):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrSelfRating.Error()})
	case errors.Is(err, core.ErrInvalidScore):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidScore.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrUnknownTrait):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrUnknownTrait.Error(), Details: err.Error()})
	case errors.Is(err, core.ErrRevealNotAnonymous):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrRevealNotAnonymous.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	case errors.Is(err, core.ErrAttractionRatingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrAttractionRatingNotFound.Error()})
	case errors.Is(err, core.ErrRevealRequestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrRevealRequestNotFound.Error()})
	case errors.Is(err, core.ErrForbiddenAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbiddenAccess.Error()})
	case errors.Is(err, core.ErrRevealAlreadyRequested):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrRevealAlreadyRequested.Error()})
	case errors.Is(err, core.ErrRevealAlreadyResolved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: core.ErrRevealAlreadyResolved.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// SubmitAttractionRating handles POST /attraction-ratings.
func (h *AttractionHandler) SubmitAttractionRating(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SubmitAttractionRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	rating, err := h.attractionService.SubmitRating(c.Request.Context(), userID, req)
	if err != nil {
		mapAttractionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// ListReceivedAttractionRatings handles GET /attraction-ratings/received.
// Anonymous authors stay redacted unless a reveal was accepted.
func (h *AttractionHandler) ListReceivedAttractionRatings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.attractionService.ListReceived(c.Request.Context(), userID)
	if err != nil {
		mapAttractionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// RequestReveal handles POST /reveal-requests. Spends one reveal token.
func (h *AttractionHandler) RequestReveal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateRevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	request, err := h.attractionService.RequestReveal(c.Request.Context(), userID, req)
	if err != nil {
		mapAttractionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListReceivedReveals handles GET /reveal-requests/received. These are the
// pending requests addressed to the caller as the anonymous author.
func (h *AttractionHandler) ListReceivedReveals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.attractionService.ListReceivedReveals(c.Request.Context(), userID)
	if err != nil {
		mapAttractionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// RespondToReveal handles POST /reveal-requests/:requestId/respond.
func (h *AttractionHandler) RespondToReveal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID := c.Param("requestId")
	if requestID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Request ID is required"})
		return
	}

	var req models.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	request, err := h.attractionService.RespondToReveal(c.Request.Context(), userID, requestID, *req.Accept)
	if err != nil {
		mapAttractionErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
