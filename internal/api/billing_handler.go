package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mirrornet-backend-go/internal/core"
)

// webhookSignatureHeader carries the provider's HMAC signature over the raw
// webhook payload.
const webhookSignatureHeader = "X-Webhook-Signature"

// BillingHandler handles subscription billing API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status codes.
func mapBillingErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrWebhookSignature):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrWebhookSignature.Error()})
	case errors.Is(err, core.ErrWebhookPayload):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: core.ErrWebhookPayload.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrUserNotFound.Error()})
	default:
		log.Printf("Internal Server Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// CreateCheckoutSession handles POST /billing/create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sessionID, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, CheckoutSessionResponse{SessionID: sessionID})
}

// HandleBillingWebhook handles POST /billing/webhooks. The route is public;
// the provider authenticates via the signature header, verified by the
// service against the raw body.
func (h *BillingHandler) HandleBillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read webhook payload", Details: err.Error()})
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if err := h.billingService.HandleWebhook(c.Request.Context(), signature, payload); err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook processed"})
}
