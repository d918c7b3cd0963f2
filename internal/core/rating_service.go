package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// Custom errors for the RatingService.
var (
	ErrSelfRating   = errors.New("users cannot rate themselves")
	ErrInvalidScore = errors.New("trait score out of range")
	ErrUnknownTrait = errors.New("unknown trait")
)

// Trait scores are submitted on a fixed 1..5 scale.
const (
	minTraitScore = 1
	maxTraitScore = 5
)

// ratingService implements the RatingService interface.
type ratingService struct {
	ratingRepo   db.RatingRepository
	circleRepo   db.CircleRepository
	userRepo     db.UserRepository
	auditService AuditService
}

// NewRatingService creates a new RatingService instance.
func NewRatingService(rr db.RatingRepository, cr db.CircleRepository, ur db.UserRepository, as AuditService) RatingService {
	return &ratingService{
		ratingRepo:   rr,
		circleRepo:   cr,
		userRepo:     ur,
		auditService: as,
	}
}

// validateTraitScores checks that every submitted trait belongs to the
// allowed set and every score is within range.
func validateTraitScores(scores map[string]int, allowedTraits []string) error {
	allowed := make(map[string]bool, len(allowedTraits))
	for _, trait := range allowedTraits {
		allowed[trait] = true
	}
	for trait, score := range scores {
		if !allowed[trait] {
			return fmt.Errorf("%w: '%s'", ErrUnknownTrait, trait)
		}
		if score < minTraitScore || score > maxTraitScore {
			return fmt.Errorf("%w: trait '%s' scored %d, allowed range is %d..%d", ErrInvalidScore, trait, score, minTraitScore, maxTraitScore)
		}
	}
	return nil
}

// ratingAverage returns the mean of a rating's trait scores, or 0 for an
// empty score map.
func ratingAverage(rating *models.Rating) float64 {
	if len(rating.Scores) == 0 {
		return 0
	}
	sum := 0
	for _, score := range rating.Scores {
		sum += score
	}
	return float64(sum) / float64(len(rating.Scores))
}

// SubmitRating upserts the caller's rating of a fellow circle member and
// recomputes the derived aggregates. There is one rating per
// (rater, ratee, circle); re-submitting replaces the previous scores.
func (s *ratingService) SubmitRating(ctx context.Context, raterID, circleID string, req models.SubmitRatingRequest) (*models.Rating, error) {
	if s.ratingRepo == nil || s.circleRepo == nil || s.userRepo == nil {
		return nil, errors.New("ratingService: component not initialized")
	}

	if req.ToUserID == raterID {
		return nil, ErrSelfRating
	}

	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, circleID)
		}
		return nil, fmt.Errorf("failed to get circle '%s' for rating: %w", circleID, err)
	}

	if !circle.HasMember(raterID) {
		return nil, fmt.Errorf("%w: rater '%s' in circle '%s'", ErrNotCircleMember, raterID, circleID)
	}
	if !circle.HasMember(req.ToUserID) {
		return nil, fmt.Errorf("%w: ratee '%s' in circle '%s'", ErrMemberNotFound, req.ToUserID, circleID)
	}

	if err := validateTraitScores(req.Scores, models.TraitsByCircleType[circle.Type]); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rating := &models.Rating{
		ID:         models.RatingDocID(raterID, req.ToUserID, circleID),
		FromUserID: raterID,
		ToUserID:   req.ToUserID,
		CircleID:   circleID,
		CircleType: circle.Type,
		Scores:     req.Scores,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}

	// Aggregates are separate single-document writes. A failure here leaves
	// them stale until the next submission; the deterministic rating ID makes
	// a client retry idempotent.
	if err := s.recomputeCircleAggregates(ctx, circle); err != nil {
		return nil, err
	}
	if err := s.recomputeUserAggregates(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     raterID,
			Action:     "RATING_SUBMIT",
			TargetType: "CIRCLE",
			TargetID:   circleID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"ratedUserId": req.ToUserID,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for RATING_SUBMIT (circleID: %s): %v\n", circleID, auditErr)
		}
	}

	return rating, nil
}

// recomputeCircleAggregates refreshes a circle's per-trait averages from all
// ratings stored for that circle.
func (s *ratingService) recomputeCircleAggregates(ctx context.Context, circle *models.Circle) error {
	ratings, err := s.ratingRepo.GetByCircleID(ctx, circle.ID)
	if err != nil {
		return fmt.Errorf("failed to load ratings for circle '%s' aggregation: %w", circle.ID, err)
	}

	scores := make(map[string]models.ScoreAggregate)
	for _, trait := range models.TraitsByCircleType[circle.Type] {
		sum, count := 0, 0
		for _, rating := range ratings {
			if score, ok := rating.Scores[trait]; ok {
				sum += score
				count++
			}
		}
		aggregate := models.ScoreAggregate{Count: count}
		if count > 0 {
			aggregate.Average = float64(sum) / float64(count)
		}
		scores[trait] = aggregate
	}

	circle.TraitScores = scores
	circle.UpdatedAt = time.Now().UTC()
	if err := s.circleRepo.Update(ctx, circle); err != nil {
		return fmt.Errorf("failed to update aggregates for circle '%s': %w", circle.ID, err)
	}
	return nil
}

// recomputeUserAggregates refreshes the ratee's overall and family scores.
// Each rating contributes its own mean; the overall average is the mean of
// those per-rating means.
func (s *ratingService) recomputeUserAggregates(ctx context.Context, userID string) error {
	ratings, err := s.ratingRepo.GetByTarget(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load ratings for user '%s' aggregation: %w", userID, err)
	}

	var ecoSum, familySum float64
	ecoCount, familyCount := 0, 0
	for _, rating := range ratings {
		average := ratingAverage(rating)
		ecoSum += average
		ecoCount++
		if rating.CircleType == models.CircleTypeFamily {
			familySum += average
			familyCount++
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user '%s' for aggregation: %w", userID, err)
	}

	user.EcoScore = models.ScoreAggregate{Count: ecoCount}
	if ecoCount > 0 {
		user.EcoScore.Average = ecoSum / float64(ecoCount)
	}
	user.FamilyScore = models.ScoreAggregate{Count: familyCount}
	if familyCount > 0 {
		user.FamilyScore.Average = familySum / float64(familyCount)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update aggregates for user '%s': %w", userID, err)
	}
	return nil
}

// ListReceived returns the caller's received ratings in a circle. Rater
// identity is not part of the circle rating product surface, so the from
// side is cleared before the ratings leave the service.
func (s *ratingService) ListReceived(ctx context.Context, userID, circleID string) ([]*models.Rating, error) {
	if s.ratingRepo == nil || s.circleRepo == nil {
		return nil, errors.New("ratingService: component not initialized")
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

	ratings, err := s.ratingRepo.GetByTargetInCircle(ctx, userID, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received ratings for user '%s' in circle '%s': %w", userID, circleID, err)
	}

	for _, rating := range ratings {
		rating.FromUserID = ""
	}
	return ratings, nil
}

// GetTraitBreakdown returns the caller's per-circle aggregate for one trait,
// covering every circle of a kind that carries that trait.
func (s *ratingService) GetTraitBreakdown(ctx context.Context, userID, trait string) ([]*models.TraitCircleScore, error) {
	if s.ratingRepo == nil || s.circleRepo == nil {
		return nil, errors.New("ratingService: component not initialized")
	}

	known := false
	for _, traits := range models.TraitsByCircleType {
		for _, t := range traits {
			if t == trait {
				known = true
			}
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownTrait, trait)
	}

	circles, err := s.circleRepo.GetByMemberID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles for trait breakdown: %w", err)
	}

	breakdown := make([]*models.TraitCircleScore, 0, len(circles))
	for _, circle := range circles {
		carriesTrait := false
		for _, t := range models.TraitsByCircleType[circle.Type] {
			if t == trait {
				carriesTrait = true
			}
		}
		if !carriesTrait {
			continue
		}

		ratings, err := s.ratingRepo.GetByTargetInCircle(ctx, userID, circle.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ratings for circle '%s': %w", circle.ID, err)
		}

		sum, count := 0, 0
		for _, rating := range ratings {
			if score, ok := rating.Scores[trait]; ok {
				sum += score
				count++
			}
		}

		entry := &models.TraitCircleScore{
			CircleID:   circle.ID,
			CircleName: circle.Name,
			CircleType: circle.Type,
			Count:      count,
		}
		if count > 0 {
			entry.Average = float64(sum) / float64(count)
		}
		breakdown = append(breakdown, entry)
	}

	return breakdown, nil
}
