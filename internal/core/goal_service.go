package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
	"mirrornet-backend-go/pkg/messagequeue"
)

// Custom errors for the GoalService.
var (
	ErrGoalNotFound        = errors.New("goal not found")
	ErrGoalAlreadyResolved = errors.New("goal has already been responded to")
	ErrGoalNotActive       = errors.New("goal is not active")
	ErrNotFamilyCircle     = errors.New("goals can only be suggested in family circles")
	ErrSelfGoal            = errors.New("cannot suggest a goal to yourself")
)

// tipGenerationTimeout bounds the wait for a coaching tip. Suggesting a goal
// must not hang on the tip provider.
const tipGenerationTimeout = 10 * time.Second

// goalService implements the GoalService interface.
type goalService struct {
	goalRepo     db.FamilyGoalRepository
	circleRepo   db.CircleRepository
	userRepo     db.UserRepository
	auditService AuditService
	tips         TipGenerator
	queue        messagequeue.MessageQueue
}

// NewGoalService creates a new GoalService instance. Both the tip generator
// and the queue may be nil; goals are then created without tips or events.
func NewGoalService(
	gr db.FamilyGoalRepository,
	cr db.CircleRepository,
	ur db.UserRepository,
	as AuditService,
	tips TipGenerator,
	queue messagequeue.MessageQueue,
) GoalService {
	return &goalService{
		goalRepo:     gr,
		circleRepo:   cr,
		userRepo:     ur,
		auditService: as,
		tips:         tips,
		queue:        queue,
	}
}

// SuggestGoal creates a pending goal suggestion for a family circle member.
// The coaching tip is generated best-effort: a failure or timeout leaves the
// tip empty and the goal is written regardless.
func (s *goalService) SuggestGoal(ctx context.Context, fromUserID string, req models.SuggestGoalRequest) (*models.FamilyGoal, error) {
	if s.goalRepo == nil || s.circleRepo == nil || s.userRepo == nil {
		return nil, errors.New("goalService: component not initialized")
	}

	if req.ToUserID == fromUserID {
		return nil, ErrSelfGoal
	}

	from, err := s.userRepo.GetByID(ctx, fromUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, fromUserID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", fromUserID, err)
	}
	if !ResolveCapabilities(from).GoalSuggestions {
		return nil, fmt.Errorf("%w: goal suggestions", ErrPremiumRequired)
	}

	circle, err := s.circleRepo.GetByID(ctx, req.CircleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, req.CircleID)
		}
		return nil, fmt.Errorf("failed to get circle '%s': %w", req.CircleID, err)
	}
	if circle.Type != models.CircleTypeFamily {
		return nil, fmt.Errorf("%w: circle '%s' is of type '%s'", ErrNotFamilyCircle, req.CircleID, circle.Type)
	}
	if !circle.HasMember(fromUserID) {
		return nil, fmt.Errorf("%w: user '%s' in circle '%s'", ErrNotCircleMember, fromUserID, req.CircleID)
	}
	if !circle.HasMember(req.ToUserID) {
		return nil, fmt.Errorf("%w: user '%s' in circle '%s'", ErrMemberNotFound, req.ToUserID, req.CircleID)
	}

	if err := validateGoalTrait(req.Trait); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByID(ctx, req.ToUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, req.ToUserID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", req.ToUserID, err)
	}

	tip := s.generateTip(ctx, req.Trait, target.DisplayName)

	now := time.Now().UTC()
	goal := &models.FamilyGoal{
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		CircleID:   req.CircleID,
		Trait:      req.Trait,
		Tip:        tip,
		Status:     models.GoalStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	publishActivity(s.queue, "goal.suggested", fromUserID, req.ToUserID)

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     fromUserID,
			Action:     "GOAL_SUGGEST",
			TargetType: "FAMILY_GOAL",
			TargetID:   goal.ID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"toUserId": req.ToUserID,
				"trait":    req.Trait,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for GOAL_SUGGEST (goalID: %s): %v\n", goal.ID, auditErr)
		}
	}

	return goal, nil
}

// validateGoalTrait checks the trait against the family circle trait set.
func validateGoalTrait(trait string) error {
	for _, t := range models.TraitsByCircleType[models.CircleTypeFamily] {
		if t == trait {
			return nil
		}
	}
	return fmt.Errorf("%w: '%s'", ErrUnknownTrait, trait)
}

// generateTip asks the tip provider for a coaching tip, bounded by a
// timeout. Any failure is logged and yields an empty tip.
func (s *goalService) generateTip(ctx context.Context, trait, partnerName string) string {
	if s.tips == nil {
		return ""
	}

	tipCtx, cancel := context.WithTimeout(ctx, tipGenerationTimeout)
	defer cancel()

	tip, err := s.tips.GenerateTip(tipCtx, trait, partnerName)
	if err != nil {
		fmt.Printf("Warning: failed to generate coaching tip for trait '%s': %v\n", trait, err)
		return ""
	}
	return tip
}

// ListGoals returns every goal the user participates in, on either side.
func (s *goalService) ListGoals(ctx context.Context, userID string) ([]*models.FamilyGoal, error) {
	if s.goalRepo == nil {
		return nil, errors.New("goalService: goalRepo not initialized")
	}
	goals, err := s.goalRepo.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals for user '%s': %w", userID, err)
	}
	return goals, nil
}

// Respond lets the goal recipient accept (pending to active) or decline
// (pending to declined) a suggestion.
func (s *goalService) Respond(ctx context.Context, userID, goalID string, accept bool) (*models.FamilyGoal, error) {
	if s.goalRepo == nil {
		return nil, errors.New("goalService: goalRepo not initialized")
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: goal with ID '%s'", ErrGoalNotFound, goalID)
		}
		return nil, fmt.Errorf("failed to get goal '%s': %w", goalID, err)
	}

	if goal.ToUserID != userID {
		return nil, fmt.Errorf("%w: user '%s' is not the recipient of goal '%s'", ErrForbiddenAccess, userID, goalID)
	}
	if goal.Status != models.GoalStatusPending {
		return nil, fmt.Errorf("%w: goal '%s' is '%s'", ErrGoalAlreadyResolved, goalID, goal.Status)
	}

	now := time.Now().UTC()
	if accept {
		goal.Status = models.GoalStatusActive
	} else {
		goal.Status = models.GoalStatusDeclined
	}
	goal.RespondedAt = &now
	goal.UpdatedAt = now

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal '%s': %w", goalID, err)
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "GOAL_RESPOND",
			TargetType: "FAMILY_GOAL",
			TargetID:   goalID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"status": goal.Status,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for GOAL_RESPOND (goalID: %s): %v\n", goalID, auditErr)
		}
	}

	return goal, nil
}

// Complete marks an active goal as completed. Either participant may do it.
func (s *goalService) Complete(ctx context.Context, userID, goalID string) (*models.FamilyGoal, error) {
	if s.goalRepo == nil {
		return nil, errors.New("goalService: goalRepo not initialized")
	}

	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: goal with ID '%s'", ErrGoalNotFound, goalID)
		}
		return nil, fmt.Errorf("failed to get goal '%s': %w", goalID, err)
	}

	if goal.FromUserID != userID && goal.ToUserID != userID {
		return nil, fmt.Errorf("%w: user '%s' does not participate in goal '%s'", ErrForbiddenAccess, userID, goalID)
	}
	if goal.Status != models.GoalStatusActive {
		return nil, fmt.Errorf("%w: goal '%s' is '%s'", ErrGoalNotActive, goalID, goal.Status)
	}

	now := time.Now().UTC()
	goal.Status = models.GoalStatusCompleted
	goal.CompletedAt = &now
	goal.UpdatedAt = now

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal '%s': %w", goalID, err)
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "GOAL_COMPLETE",
			TargetType: "FAMILY_GOAL",
			TargetID:   goalID,
			Timestamp:  now,
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for GOAL_COMPLETE (goalID: %s): %v\n", goalID, auditErr)
		}
	}

	return goal, nil
}
