package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// Custom errors for the CircleService.
var (
	ErrCircleNotFound    = errors.New("circle not found")
	ErrForbiddenAccess   = errors.New("user does not have permission for this action")
	ErrInvalidCircleType = errors.New("invalid circle type")
	ErrNotCircleMember   = errors.New("user is not a member of this circle")
	ErrCannotRemoveOwner = errors.New("the circle owner cannot be removed")
	ErrMemberNotFound    = errors.New("member not found in this circle")
)

// circleService implements the CircleService interface.
type circleService struct {
	circleRepo   db.CircleRepository
	userRepo     db.UserRepository
	ratingRepo   db.RatingRepository
	auditService AuditService
}

// NewCircleService creates a new CircleService instance.
func NewCircleService(cr db.CircleRepository, ur db.UserRepository, rr db.RatingRepository, as AuditService) CircleService {
	return &circleService{
		circleRepo:   cr,
		userRepo:     ur,
		ratingRepo:   rr,
		auditService: as,
	}
}

// initialTraitScores builds a zeroed aggregate map for every trait of the
// given circle kind, so fresh circles render a full trait list immediately.
func initialTraitScores(circleType string) map[string]models.ScoreAggregate {
	scores := make(map[string]models.ScoreAggregate)
	for _, trait := range models.TraitsByCircleType[circleType] {
		scores[trait] = models.ScoreAggregate{}
	}
	return scores
}

// ListMine returns every circle the user is a member of.
func (s *circleService) ListMine(ctx context.Context, userID string) ([]*models.Circle, error) {
	if s.circleRepo == nil {
		return nil, errors.New("circleService: circleRepo not initialized")
	}
	circles, err := s.circleRepo.GetByMemberID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles for user '%s': %w", userID, err)
	}
	return circles, nil
}

// Create creates a circle of one of the default kinds with the caller as
// owner and sole member.
func (s *circleService) Create(ctx context.Context, userID string, req models.CreateCircleRequest) (*models.Circle, error) {
	if s.circleRepo == nil {
		return nil, errors.New("circleService: circleRepo not initialized")
	}

	if !models.IsValidCircleType(req.Type) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidCircleType, req.Type)
	}

	now := time.Now().UTC()
	circle := &models.Circle{
		Name:        req.Name,
		Type:        req.Type,
		OwnerID:     userID,
		MemberIDs:   []string{userID},
		TraitScores: initialTraitScores(req.Type),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	circleID, err := s.circleRepo.Create(ctx, circle)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle: %w", err)
	}
	circle.ID = circleID

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "CIRCLE_CREATE",
			TargetType: "CIRCLE",
			TargetID:   circle.ID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"name": circle.Name,
				"type": circle.Type,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for CIRCLE_CREATE (circleID: %s): %v\n", circle.ID, auditErr)
		}
	}

	return circle, nil
}

// GetDetail returns a circle together with per-member presentation state.
// Only members may view the detail.
func (s *circleService) GetDetail(ctx context.Context, userID, circleID string) (*models.CircleDetail, error) {
	if s.circleRepo == nil || s.userRepo == nil || s.ratingRepo == nil {
		return nil, errors.New("circleService: component not initialized")
	}

	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, circleID)
		}
		return nil, fmt.Errorf("failed to get circle '%s': %w", circleID, err)
	}

	if !circle.HasMember(userID) {
		return nil, fmt.Errorf("%w: user '%s' in circle '%s'", ErrNotCircleMember, userID, circleID)
	}

	members := make([]models.CircleMember, 0, len(circle.MemberIDs))
	for _, memberID := range circle.MemberIDs {
		member, err := s.userRepo.GetByID(ctx, memberID)
		if err != nil {
			// Stale member references should not break the whole page.
			fmt.Printf("Warning: failed to load member '%s' of circle '%s': %v. Skipping.\n", memberID, circleID, err)
			continue
		}

		ratedByMe := false
		if memberID != userID {
			if _, err := s.ratingRepo.GetByTuple(ctx, userID, memberID, circleID); err == nil {
				ratedByMe = true
			} else if !errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("failed to check rating state for member '%s': %w", memberID, err)
			}
		}

		members = append(members, models.CircleMember{
			UserID:      member.ID,
			DisplayName: member.DisplayName,
			PhotoURL:    member.PhotoURL,
			IsPremium:   member.IsPremium,
			RatedByMe:   ratedByMe,
			CanRemove:   userID == circle.OwnerID && memberID != circle.OwnerID,
		})
	}

	return &models.CircleDetail{Circle: circle, Members: members}, nil
}

// RemoveMember removes a member from a circle. Only the owner may remove
// members, and the owner themselves can never be removed.
func (s *circleService) RemoveMember(ctx context.Context, callerID, circleID, memberID string) error {
	if s.circleRepo == nil {
		return errors.New("circleService: circleRepo not initialized")
	}

	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, circleID)
		}
		return fmt.Errorf("failed to get circle '%s' for member removal: %w", circleID, err)
	}

	if circle.OwnerID != callerID {
		return fmt.Errorf("%w: user '%s' is not owner of circle '%s'", ErrForbiddenAccess, callerID, circleID)
	}
	if memberID == circle.OwnerID {
		return fmt.Errorf("%w: circle '%s'", ErrCannotRemoveOwner, circleID)
	}
	if !circle.HasMember(memberID) {
		return fmt.Errorf("%w: user '%s' in circle '%s'", ErrMemberNotFound, memberID, circleID)
	}

	if err := s.circleRepo.RemoveMember(ctx, circleID, memberID); err != nil {
		return fmt.Errorf("failed to remove member '%s' from circle '%s': %w", memberID, circleID, err)
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     callerID,
			Action:     "CIRCLE_MEMBER_REMOVE",
			TargetType: "CIRCLE",
			TargetID:   circleID,
			Timestamp:  time.Now().UTC(),
			Details: map[string]interface{}{
				"removedUserId": memberID,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for CIRCLE_MEMBER_REMOVE (circleID: %s): %v\n", circleID, auditErr)
		}
	}

	return nil
}
