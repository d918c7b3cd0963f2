package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// ErrEmptyFeedback is returned when a feedback submission has no message.
var ErrEmptyFeedback = errors.New("feedback message cannot be empty")

// feedbackService implements the FeedbackService interface. Feedback is
// write-only: nothing in the product reads it back.
type feedbackService struct {
	feedbackRepo db.FeedbackRepository
}

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(fr db.FeedbackRepository) FeedbackService {
	return &feedbackService{feedbackRepo: fr}
}

// Submit stores one feedback entry for the caller.
func (s *feedbackService) Submit(ctx context.Context, userID string, req models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if s.feedbackRepo == nil {
		return nil, errors.New("feedbackService: feedbackRepo not initialized")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyFeedback
	}

	feedback := &models.Feedback{
		UserID:    userID,
		Message:   message,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	return feedback, nil
}
