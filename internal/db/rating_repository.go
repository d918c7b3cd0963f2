package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mirrornet-backend-go/internal/models"
)

const ratingsCollection = "ratings"

// firestoreRatingRepository implements the RatingRepository interface using Firestore.
type firestoreRatingRepository struct {
	client *firestore.Client
}

// NewFirestoreRatingRepository creates a new instance of firestoreRatingRepository.
func NewFirestoreRatingRepository(client *firestore.Client) RatingRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for RatingRepository.")
	}
	return &firestoreRatingRepository{client: client}
}

// Upsert writes the rating under its deterministic tuple ID, overwriting any
// earlier submission for the same (fromUser, toUser, circle).
func (r *firestoreRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	if rating.FromUserID == "" || rating.ToUserID == "" || rating.CircleID == "" {
		return errors.New("fromUserID, toUserID and circleID are required for Upsert operation")
	}
	docID := models.RatingDocID(rating.FromUserID, rating.ToUserID, rating.CircleID)
	rating.ID = docID

	_, err := r.client.Collection(ratingsCollection).Doc(docID).Set(ctx, rating)
	if err != nil {
		return fmt.Errorf("failed to upsert rating '%s': %w", docID, err)
	}
	return nil
}

// GetByTuple retrieves the rating for one (fromUser, toUser, circle) tuple.
func (r *firestoreRatingRepository) GetByTuple(ctx context.Context, fromUserID, toUserID, circleID string) (*models.Rating, error) {
	if fromUserID == "" || toUserID == "" || circleID == "" {
		return nil, errors.New("fromUserID, toUserID and circleID are required for GetByTuple operation")
	}
	docID := models.RatingDocID(fromUserID, toUserID, circleID)
	docSnap, err := r.client.Collection(ratingsCollection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("rating '%s' not found: %w", docID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating '%s': %w", docID, err)
	}

	var rating models.Rating
	if err := docSnap.DataTo(&rating); err != nil {
		return nil, fmt.Errorf("failed to decode rating data for '%s': %w", docID, err)
	}
	rating.ID = docSnap.Ref.ID

	return &rating, nil
}

// GetByCircleID retrieves all ratings submitted within a circle.
func (r *firestoreRatingRepository) GetByCircleID(ctx context.Context, circleID string) ([]*models.Rating, error) {
	if circleID == "" {
		return nil, errors.New("circleID cannot be empty for GetByCircleID operation")
	}
	return r.queryRatings(ctx, r.client.Collection(ratingsCollection).Where("circleId", "==", circleID))
}

// GetByTargetInCircle retrieves the ratings one user received within a circle.
func (r *firestoreRatingRepository) GetByTargetInCircle(ctx context.Context, toUserID, circleID string) ([]*models.Rating, error) {
	if toUserID == "" || circleID == "" {
		return nil, errors.New("toUserID and circleID cannot be empty for GetByTargetInCircle operation")
	}
	query := r.client.Collection(ratingsCollection).
		Where("toUserId", "==", toUserID).
		Where("circleId", "==", circleID)
	return r.queryRatings(ctx, query)
}

// GetByTarget retrieves all ratings one user received across every circle.
func (r *firestoreRatingRepository) GetByTarget(ctx context.Context, toUserID string) ([]*models.Rating, error) {
	if toUserID == "" {
		return nil, errors.New("toUserID cannot be empty for GetByTarget operation")
	}
	return r.queryRatings(ctx, r.client.Collection(ratingsCollection).Where("toUserId", "==", toUserID))
}

func (r *firestoreRatingRepository) queryRatings(ctx context.Context, query firestore.Query) ([]*models.Rating, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var ratings []*models.Rating
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate ratings: %w", err)
		}

		var rating models.Rating
		if err := doc.DataTo(&rating); err != nil {
			log.Printf("Error decoding rating data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		rating.ID = doc.Ref.ID
		ratings = append(ratings, &rating)
	}

	return ratings, nil
}
