package core

import (
	"context"

	"mirrornet-backend-go/internal/models"
)

// UserService defines the interface for user profile and provisioning operations.
type UserService interface {
	// InitializeProfile returns the caller's profile, provisioning the user
	// document and the default circles on first login. The boolean reports
	// whether a new profile was created.
	InitializeProfile(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Search(ctx context.Context, callerID, query string) ([]*models.UserSearchResult, error)
}

// CircleService defines the interface for circle-related operations.
type CircleService interface {
	ListMine(ctx context.Context, userID string) ([]*models.Circle, error)
	Create(ctx context.Context, userID string, req models.CreateCircleRequest) (*models.Circle, error)
	GetDetail(ctx context.Context, userID, circleID string) (*models.CircleDetail, error)
	RemoveMember(ctx context.Context, callerID, circleID, memberID string) error
}

// RatingService defines the interface for circle rating operations.
type RatingService interface {
	SubmitRating(ctx context.Context, raterID, circleID string, req models.SubmitRatingRequest) (*models.Rating, error)
	ListReceived(ctx context.Context, userID, circleID string) ([]*models.Rating, error)
	GetTraitBreakdown(ctx context.Context, userID, trait string) ([]*models.TraitCircleScore, error)
}

// AttractionService defines the interface for attraction ratings and the
// reveal workflow built on top of them.
type AttractionService interface {
	SubmitRating(ctx context.Context, raterID string, req models.SubmitAttractionRatingRequest) (*models.AttractionRating, error)
	ListReceived(ctx context.Context, userID string) ([]*models.AttractionRatingView, error)
	RequestReveal(ctx context.Context, requesterID string, req models.CreateRevealRequest) (*models.RevealRequest, error)
	ListReceivedReveals(ctx context.Context, userID string) ([]*models.RevealRequest, error)
	RespondToReveal(ctx context.Context, userID, requestID string, accept bool) (*models.RevealRequest, error)
}

// GoalService defines the interface for family goal operations.
type GoalService interface {
	SuggestGoal(ctx context.Context, fromUserID string, req models.SuggestGoalRequest) (*models.FamilyGoal, error)
	ListGoals(ctx context.Context, userID string) ([]*models.FamilyGoal, error)
	Respond(ctx context.Context, userID, goalID string, accept bool) (*models.FamilyGoal, error)
	Complete(ctx context.Context, userID, goalID string) (*models.FamilyGoal, error)
}

// InviteService defines the interface for circle invite operations.
type InviteService interface {
	Send(ctx context.Context, fromUserID string, req models.SendInviteRequest) (*models.Invite, error)
	ListReceived(ctx context.Context, userID string) ([]*models.Invite, error)
	Respond(ctx context.Context, userID, inviteID string, accept bool) (*models.Invite, error)
}

// NotificationService defines the interface for the badge count aggregator.
type NotificationService interface {
	// GetBadgeCounts runs one aggregation cycle for the given user. The
	// caller supplies the loaded profile so the premium short-circuit does
	// not need another read.
	GetBadgeCounts(ctx context.Context, user *models.User) (*models.BadgeCounts, error)
}

// FeedbackService defines the interface for product feedback submission.
type FeedbackService interface {
	Submit(ctx context.Context, userID string, req models.SubmitFeedbackRequest) (*models.Feedback, error)
}

// BillingService defines the interface for subscription billing operations.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
	HandleWebhook(ctx context.Context, signature string, payload []byte) error
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// TipGenerator produces a short coaching tip for a goal suggestion. A nil
// generator is valid; goal creation then proceeds without a tip.
type TipGenerator interface {
	GenerateTip(ctx context.Context, trait, partnerName string) (string, error)
}
