package core

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
	"mirrornet-backend-go/pkg/cache"
)

// Custom errors for the BillingService.
var (
	ErrWebhookSignature = errors.New("webhook signature verification failed")
	ErrWebhookPayload   = errors.New("webhook payload is malformed")
)

// Webhook event types the billing provider delivers.
const (
	eventSubscriptionActivated = "subscription.activated"
	eventSubscriptionCanceled  = "subscription.canceled"
)

// webhookEventTTL is how long a processed event ID stays claimed, which
// bounds the replay window the dedup guard covers.
const webhookEventTTL = 24 * time.Hour

// webhookEvent is the provider's webhook payload shape.
type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		UserID         string `json:"userId"`
		SubscriptionID string `json:"subscriptionId"`
	} `json:"data"`
}

// billingService implements the BillingService interface. It links provider
// subscription events to the premium flag on user documents.
type billingService struct {
	userRepo      db.UserRepository
	auditService  AuditService
	eventCache    cache.Cache
	webhookSecret string
}

// NewBillingService creates a new BillingService instance. The cache may be
// nil; webhook deduplication is then skipped in favor of availability.
func NewBillingService(ur db.UserRepository, as AuditService, eventCache cache.Cache, webhookSecret string) BillingService {
	return &billingService{
		userRepo:      ur,
		auditService:  as,
		eventCache:    eventCache,
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession returns a checkout session reference for the user.
// The provider integration is a stub; the reference shape is stable so the
// client flow can be built against it.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if s.userRepo == nil {
		return "", errors.New("billingService: userRepo not initialized")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to get user '%s' for checkout: %w", userID, err)
	}

	sessionID := "cs_" + uuid.NewString()
	log.Printf("Created checkout session '%s' for user '%s'", sessionID, userID)
	return sessionID, nil
}

// verifySignature checks the hex HMAC-SHA256 signature over the raw payload.
func (s *billingService) verifySignature(signature string, payload []byte) error {
	if s.webhookSecret == "" {
		return fmt.Errorf("%w: no webhook secret configured", ErrWebhookSignature)
	}
	provided := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if provided == "" {
		return fmt.Errorf("%w: signature header missing", ErrWebhookSignature)
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return fmt.Errorf("%w: signature mismatch", ErrWebhookSignature)
	}
	return nil
}

// HandleWebhook verifies, deduplicates and processes one billing event.
// Redis unavailability degrades to processing without the replay guard; a
// processing failure releases the claim so the provider's retry can land.
func (s *billingService) HandleWebhook(ctx context.Context, signature string, payload []byte) error {
	if s.userRepo == nil {
		return errors.New("billingService: userRepo not initialized")
	}

	if err := s.verifySignature(signature, payload); err != nil {
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookPayload, err)
	}
	if event.ID == "" || event.Type == "" || event.Data.UserID == "" {
		return fmt.Errorf("%w: id, type and data.userId are required", ErrWebhookPayload)
	}

	dedupKey := "billing:event:" + event.ID
	claimed := true
	if s.eventCache != nil {
		var err error
		claimed, err = s.eventCache.SetNX(ctx, dedupKey, "1", webhookEventTTL)
		if err != nil {
			fmt.Printf("Warning: webhook dedup cache unavailable, processing event '%s' without replay guard: %v\n", event.ID, err)
			claimed = true
		}
	}
	if !claimed {
		log.Printf("Skipping already-processed billing event '%s'", event.ID)
		return nil
	}

	if err := s.processEvent(ctx, event); err != nil {
		// Release the claim so the provider's retry is not swallowed by
		// the dedup guard.
		if s.eventCache != nil {
			if delErr := s.eventCache.Delete(ctx, dedupKey); delErr != nil {
				fmt.Printf("Warning: failed to release dedup claim for event '%s': %v\n", event.ID, delErr)
			}
		}
		return err
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     event.Data.UserID,
			Action:     "BILLING_WEBHOOK",
			TargetType: "USER",
			TargetID:   event.Data.UserID,
			Timestamp:  time.Now().UTC(),
			Details: map[string]interface{}{
				"eventId":   event.ID,
				"eventType": event.Type,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for BILLING_WEBHOOK (eventID: %s): %v\n", event.ID, auditErr)
		}
	}

	return nil
}

// processEvent applies one verified event to the user document.
func (s *billingService) processEvent(ctx context.Context, event webhookEvent) error {
	switch event.Type {
	case eventSubscriptionActivated, eventSubscriptionCanceled:
	default:
		log.Printf("Ignoring unhandled billing event type '%s' (eventID: %s)", event.Type, event.ID)
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, event.Data.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, event.Data.UserID)
		}
		return fmt.Errorf("failed to get user '%s' for billing event: %w", event.Data.UserID, err)
	}

	switch event.Type {
	case eventSubscriptionActivated:
		user.IsPremium = true
		user.SubscriptionID = event.Data.SubscriptionID
	case eventSubscriptionCanceled:
		user.IsPremium = false
		user.SubscriptionID = ""
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to apply billing event '%s' to user '%s': %w", event.ID, event.Data.UserID, err)
	}
	return nil
}
