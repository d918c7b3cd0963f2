package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"mirrornet-backend-go/internal/models"
)

const feedbackCollection = "feedback"

// firestoreFeedbackRepository implements the FeedbackRepository interface
// using Firestore. Feedback is write-only from the application's point of
// view, so the repository exposes no reads.
type firestoreFeedbackRepository struct {
	client *firestore.Client
}

// NewFirestoreFeedbackRepository creates a new instance of firestoreFeedbackRepository.
func NewFirestoreFeedbackRepository(client *firestore.Client) FeedbackRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FeedbackRepository.")
	}
	return &firestoreFeedbackRepository{client: client}
}

// Create adds a new feedback document with an auto-generated ID.
func (r *firestoreFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) (string, error) {
	docRef := r.client.Collection(feedbackCollection).NewDoc()
	feedback.ID = docRef.ID

	_, err := docRef.Create(ctx, feedback)
	if err != nil {
		return "", fmt.Errorf("failed to create feedback entry: %w", err)
	}
	return docRef.ID, nil
}
