package db

import (
	"context"

	"mirrornet-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// CreateWithDefaultCircles atomically writes the user document (merged)
	// and the given circle documents in a single transaction.
	CreateWithDefaultCircles(ctx context.Context, user *models.User, circles []*models.Circle) error
}

// CircleRepository defines the interface for circle data storage operations.
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle) (string, error) // Returns new circle ID
	GetByID(ctx context.Context, circleID string) (*models.Circle, error)
	GetByMemberID(ctx context.Context, userID string) ([]*models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
	AddMember(ctx context.Context, circleID, userID string) error
	RemoveMember(ctx context.Context, circleID, userID string) error
}

// RatingRepository defines the interface for circle rating storage operations.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	GetByTuple(ctx context.Context, fromUserID, toUserID, circleID string) (*models.Rating, error)
	GetByCircleID(ctx context.Context, circleID string) ([]*models.Rating, error)
	GetByTargetInCircle(ctx context.Context, toUserID, circleID string) ([]*models.Rating, error)
	GetByTarget(ctx context.Context, toUserID string) ([]*models.Rating, error)
}

// AttractionRatingRepository defines the interface for premium attraction rating storage.
type AttractionRatingRepository interface {
	Upsert(ctx context.Context, rating *models.AttractionRating) error
	GetByID(ctx context.Context, ratingID string) (*models.AttractionRating, error)
	GetByTarget(ctx context.Context, toUserID string) ([]*models.AttractionRating, error)
	Update(ctx context.Context, rating *models.AttractionRating) error
}

// RevealRequestRepository defines the interface for reveal request storage.
type RevealRequestRepository interface {
	Create(ctx context.Context, req *models.RevealRequest) (string, error) // Returns new request ID
	GetByID(ctx context.Context, requestID string) (*models.RevealRequest, error)
	GetPendingByTarget(ctx context.Context, targetUserID string) ([]*models.RevealRequest, error)
	CountPendingByTarget(ctx context.Context, targetUserID string) (int, error)
	FindPendingByRating(ctx context.Context, ratingID string) (*models.RevealRequest, error)
	Update(ctx context.Context, req *models.RevealRequest) error
}

// FamilyGoalRepository defines the interface for family goal storage.
type FamilyGoalRepository interface {
	Create(ctx context.Context, goal *models.FamilyGoal) (string, error) // Returns new goal ID
	GetByID(ctx context.Context, goalID string) (*models.FamilyGoal, error)
	GetByParticipant(ctx context.Context, userID string) ([]*models.FamilyGoal, error)
	CountPendingByTarget(ctx context.Context, toUserID string) (int, error)
	Update(ctx context.Context, goal *models.FamilyGoal) error
}

// InviteRepository defines the interface for invite storage operations.
type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) (string, error) // Returns new invite ID
	GetByID(ctx context.Context, inviteID string) (*models.Invite, error)
	GetPendingByEmail(ctx context.Context, email string) ([]*models.Invite, error)
	GetPendingByToUser(ctx context.Context, userID string) ([]*models.Invite, error)
	FindPendingByCircleAndEmail(ctx context.Context, circleID, email string) (*models.Invite, error)
	Update(ctx context.Context, invite *models.Invite) error
}

// FeedbackRepository defines the interface for feedback storage operations.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) (string, error)
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
