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

// Custom errors for the AttractionService.
var (
	ErrAttractionRatingNotFound = errors.New("attraction rating not found")
	ErrRevealRequestNotFound    = errors.New("reveal request not found")
	ErrRevealNotAnonymous       = errors.New("rating is not anonymous, nothing to reveal")
	ErrRevealAlreadyRequested   = errors.New("a reveal request for this rating is already pending")
	ErrRevealAlreadyResolved    = errors.New("reveal request has already been resolved")
	ErrNoRevealTokens           = errors.New("no reveal tokens left")
)

// attractionService implements the AttractionService interface.
type attractionService struct {
	attractionRepo       db.AttractionRatingRepository
	revealRepo           db.RevealRequestRepository
	userRepo             db.UserRepository
	auditService         AuditService
	queue                messagequeue.MessageQueue
	revealTokenAllowance int
}

// NewAttractionService creates a new AttractionService instance. The queue
// may be nil; activity events are then skipped.
func NewAttractionService(
	ar db.AttractionRatingRepository,
	rr db.RevealRequestRepository,
	ur db.UserRepository,
	as AuditService,
	queue messagequeue.MessageQueue,
	revealTokenAllowance int,
) AttractionService {
	return &attractionService{
		attractionRepo:       ar,
		revealRepo:           rr,
		userRepo:             ur,
		auditService:         as,
		queue:                queue,
		revealTokenAllowance: revealTokenAllowance,
	}
}

// SubmitRating upserts the caller's attraction rating of a target user.
// Attraction ratings are a premium feature on the authoring side; one rating
// exists per (rater, target) pair and re-submitting replaces it, including
// its anonymity flag and any reveal progress.
func (s *attractionService) SubmitRating(ctx context.Context, raterID string, req models.SubmitAttractionRatingRequest) (*models.AttractionRating, error) {
	if s.attractionRepo == nil || s.userRepo == nil {
		return nil, errors.New("attractionService: component not initialized")
	}

	if req.ToUserID == raterID {
		return nil, ErrSelfRating
	}

	rater, err := s.getUser(ctx, raterID)
	if err != nil {
		return nil, err
	}
	if !ResolveCapabilities(rater).AttractionRatings {
		return nil, fmt.Errorf("%w: attraction ratings", ErrPremiumRequired)
	}

	if _, err := s.getUser(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	if err := validateTraitScores(req.Scores, models.AttractionTraits); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rating := &models.AttractionRating{
		ID:           models.AttractionRatingDocID(raterID, req.ToUserID),
		FromUserID:   raterID,
		ToUserID:     req.ToUserID,
		Scores:       req.Scores,
		Anonymous:    req.Anonymous,
		RevealStatus: "",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.attractionRepo.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store attraction rating: %w", err)
	}

	if err := s.recomputeAttractionAggregate(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	return rating, nil
}

// recomputeAttractionAggregate refreshes the target's attraction score from
// all attraction ratings they have received.
func (s *attractionService) recomputeAttractionAggregate(ctx context.Context, userID string) error {
	ratings, err := s.attractionRepo.GetByTarget(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load attraction ratings for user '%s' aggregation: %w", userID, err)
	}

	var sum float64
	count := 0
	for _, rating := range ratings {
		if len(rating.Scores) == 0 {
			continue
		}
		ratingSum := 0
		for _, score := range rating.Scores {
			ratingSum += score
		}
		sum += float64(ratingSum) / float64(len(rating.Scores))
		count++
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user '%s' for attraction aggregation: %w", userID, err)
	}

	user.AttractionScore = models.ScoreAggregate{Count: count}
	if count > 0 {
		user.AttractionScore.Average = sum / float64(count)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update attraction aggregate for user '%s': %w", userID, err)
	}
	return nil
}

// ListReceived returns the caller's received attraction ratings. Author
// identity stays redacted while a rating is anonymous and its reveal has not
// been accepted.
func (s *attractionService) ListReceived(ctx context.Context, userID string) ([]*models.AttractionRatingView, error) {
	if s.attractionRepo == nil || s.userRepo == nil {
		return nil, errors.New("attractionService: component not initialized")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ResolveCapabilities(user).AttractionRatings {
		return nil, fmt.Errorf("%w: attraction ratings", ErrPremiumRequired)
	}

	ratings, err := s.attractionRepo.GetByTarget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attraction ratings for user '%s': %w", userID, err)
	}

	views := make([]*models.AttractionRatingView, 0, len(ratings))
	for _, rating := range ratings {
		view := &models.AttractionRatingView{
			ID:           rating.ID,
			Scores:       rating.Scores,
			Anonymous:    rating.Anonymous,
			RevealStatus: rating.RevealStatus,
			CreatedAt:    rating.CreatedAt,
		}
		if !rating.Anonymous || rating.RevealStatus == models.RevealStatusAccepted {
			view.FromUserID = rating.FromUserID
			if author, err := s.userRepo.GetByID(ctx, rating.FromUserID); err == nil {
				view.FromName = author.DisplayName
			} else {
				fmt.Printf("Warning: failed to load author '%s' of attraction rating '%s': %v\n", rating.FromUserID, rating.ID, err)
			}
		}
		views = append(views, view)
	}

	return views, nil
}

// spendRevealToken decrements the user's reveal token balance, applying the
// lazy monthly reset first. The decrement happens only when a token is
// available, so the balance can never go negative.
func (s *attractionService) spendRevealToken(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	tokens := user.RevealTokens
	resetAt := user.RevealTokensResetAt

	if !resetAt.IsZero() && !now.Before(resetAt) {
		tokens = s.revealTokenAllowance
		resetAt = firstOfNextMonth(now)
	}

	if tokens <= 0 {
		return ErrNoRevealTokens
	}

	user.RevealTokens = tokens - 1
	user.RevealTokensResetAt = resetAt
	user.UpdatedAt = now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to spend reveal token for user '%s': %w", user.ID, err)
	}
	return nil
}

// RequestReveal spends one reveal token to ask the anonymous author of a
// rating to disclose their identity.
func (s *attractionService) RequestReveal(ctx context.Context, requesterID string, req models.CreateRevealRequest) (*models.RevealRequest, error) {
	if s.attractionRepo == nil || s.revealRepo == nil || s.userRepo == nil {
		return nil, errors.New("attractionService: component not initialized")
	}

	requester, err := s.getUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !ResolveCapabilities(requester).RevealRequests {
		return nil, fmt.Errorf("%w: reveal requests", ErrPremiumRequired)
	}

	rating, err := s.attractionRepo.GetByID(ctx, req.RatingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: rating with ID '%s'", ErrAttractionRatingNotFound, req.RatingID)
		}
		return nil, fmt.Errorf("failed to get attraction rating '%s': %w", req.RatingID, err)
	}

	if rating.ToUserID != requesterID {
		return nil, fmt.Errorf("%w: user '%s' is not the recipient of rating '%s'", ErrForbiddenAccess, requesterID, req.RatingID)
	}
	if !rating.Anonymous || rating.RevealStatus == models.RevealStatusAccepted {
		return nil, fmt.Errorf("%w: rating '%s'", ErrRevealNotAnonymous, req.RatingID)
	}
	if rating.RevealStatus == models.RevealStatusPending {
		return nil, fmt.Errorf("%w: rating '%s'", ErrRevealAlreadyRequested, req.RatingID)
	}
	if _, err := s.revealRepo.FindPendingByRating(ctx, req.RatingID); err == nil {
		return nil, fmt.Errorf("%w: rating '%s'", ErrRevealAlreadyRequested, req.RatingID)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending reveal requests for rating '%s': %w", req.RatingID, err)
	}

	if err := s.spendRevealToken(ctx, requester); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request := &models.RevealRequest{
		RatingID:     req.RatingID,
		RequesterID:  requesterID,
		TargetUserID: rating.FromUserID,
		Status:       models.RevealStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.revealRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create reveal request: %w", err)
	}

	rating.RevealStatus = models.RevealStatusPending
	rating.UpdatedAt = now
	if err := s.attractionRepo.Update(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to mark rating '%s' as reveal-pending: %w", req.RatingID, err)
	}

	publishActivity(s.queue, "reveal.requested", requesterID, rating.FromUserID)

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     requesterID,
			Action:     "REVEAL_REQUEST",
			TargetType: "ATTRACTION_RATING",
			TargetID:   req.RatingID,
			Timestamp:  now,
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for REVEAL_REQUEST (ratingID: %s): %v\n", req.RatingID, auditErr)
		}
	}

	return request, nil
}

// ListReceivedReveals returns the pending reveal requests addressed to the
// caller as the anonymous author.
func (s *attractionService) ListReceivedReveals(ctx context.Context, userID string) ([]*models.RevealRequest, error) {
	if s.revealRepo == nil || s.userRepo == nil {
		return nil, errors.New("attractionService: component not initialized")
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ResolveCapabilities(user).RevealRequests {
		return nil, fmt.Errorf("%w: reveal requests", ErrPremiumRequired)
	}

	requests, err := s.revealRepo.GetPendingByTarget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reveal requests for user '%s': %w", userID, err)
	}
	return requests, nil
}

// RespondToReveal lets the anonymous author accept or decline a reveal
// request. Accepting flips the rating's reveal status so the recipient sees
// the author's identity from then on.
func (s *attractionService) RespondToReveal(ctx context.Context, userID, requestID string, accept bool) (*models.RevealRequest, error) {
	if s.attractionRepo == nil || s.revealRepo == nil {
		return nil, errors.New("attractionService: component not initialized")
	}

	request, err := s.revealRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: request with ID '%s'", ErrRevealRequestNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to get reveal request '%s': %w", requestID, err)
	}

	if request.TargetUserID != userID {
		return nil, fmt.Errorf("%w: user '%s' is not the target of reveal request '%s'", ErrForbiddenAccess, userID, requestID)
	}
	if request.Status != models.RevealStatusPending {
		return nil, fmt.Errorf("%w: request '%s' is '%s'", ErrRevealAlreadyResolved, requestID, request.Status)
	}

	now := time.Now().UTC()
	newStatus := models.RevealStatusDeclined
	if accept {
		newStatus = models.RevealStatusAccepted
	}
	request.Status = newStatus
	request.RespondedAt = &now
	request.UpdatedAt = now

	if err := s.revealRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update reveal request '%s': %w", requestID, err)
	}

	// Keep the rating's reveal status in step. A missing rating is logged
	// and tolerated so the response itself still stands.
	rating, err := s.attractionRepo.GetByID(ctx, request.RatingID)
	if err != nil {
		fmt.Printf("Warning: failed to load rating '%s' while responding to reveal request '%s': %v\n", request.RatingID, requestID, err)
	} else {
		rating.RevealStatus = newStatus
		rating.UpdatedAt = now
		if err := s.attractionRepo.Update(ctx, rating); err != nil {
			fmt.Printf("Warning: failed to update reveal status on rating '%s': %v\n", request.RatingID, err)
		}
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "REVEAL_RESPOND",
			TargetType: "REVEAL_REQUEST",
			TargetID:   requestID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"status": newStatus,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for REVEAL_RESPOND (requestID: %s): %v\n", requestID, auditErr)
		}
	}

	return request, nil
}

// getUser loads a user and maps a missing document to ErrUserNotFound.
func (s *attractionService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return user, nil
}
