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

const attractionRatingsCollection = "attractionRatings"

// firestoreAttractionRatingRepository implements the AttractionRatingRepository
// interface using Firestore.
type firestoreAttractionRatingRepository struct {
	client *firestore.Client
}

// NewFirestoreAttractionRatingRepository creates a new instance of firestoreAttractionRatingRepository.
func NewFirestoreAttractionRatingRepository(client *firestore.Client) AttractionRatingRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AttractionRatingRepository.")
	}
	return &firestoreAttractionRatingRepository{client: client}
}

// Upsert writes the rating under its deterministic pair ID, overwriting any
// earlier submission by the same author for the same target.
func (r *firestoreAttractionRatingRepository) Upsert(ctx context.Context, rating *models.AttractionRating) error {
	if rating.FromUserID == "" || rating.ToUserID == "" {
		return errors.New("fromUserID and toUserID are required for Upsert operation")
	}
	docID := models.AttractionRatingDocID(rating.FromUserID, rating.ToUserID)
	rating.ID = docID

	_, err := r.client.Collection(attractionRatingsCollection).Doc(docID).Set(ctx, rating)
	if err != nil {
		return fmt.Errorf("failed to upsert attraction rating '%s': %w", docID, err)
	}
	return nil
}

// GetByID retrieves an attraction rating document by its ID.
func (r *firestoreAttractionRatingRepository) GetByID(ctx context.Context, ratingID string) (*models.AttractionRating, error) {
	if ratingID == "" {
		return nil, errors.New("ratingID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(attractionRatingsCollection).Doc(ratingID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("attraction rating with ID '%s' not found: %w", ratingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get attraction rating with ID '%s': %w", ratingID, err)
	}

	var rating models.AttractionRating
	if err := docSnap.DataTo(&rating); err != nil {
		return nil, fmt.Errorf("failed to decode attraction rating data for ID '%s': %w", ratingID, err)
	}
	rating.ID = docSnap.Ref.ID

	return &rating, nil
}

// GetByTarget retrieves all attraction ratings one user received.
func (r *firestoreAttractionRatingRepository) GetByTarget(ctx context.Context, toUserID string) ([]*models.AttractionRating, error) {
	if toUserID == "" {
		return nil, errors.New("toUserID cannot be empty for GetByTarget operation")
	}

	iter := r.client.Collection(attractionRatingsCollection).Where("toUserId", "==", toUserID).Documents(ctx)
	defer iter.Stop()

	var ratings []*models.AttractionRating
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate attraction ratings for target '%s': %w", toUserID, err)
		}

		var rating models.AttractionRating
		if err := doc.DataTo(&rating); err != nil {
			log.Printf("Error decoding attraction rating data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		rating.ID = doc.Ref.ID
		ratings = append(ratings, &rating)
	}

	return ratings, nil
}

// Update overwrites an existing attraction rating with a plain Set, typically
// to advance its reveal status.
func (r *firestoreAttractionRatingRepository) Update(ctx context.Context, rating *models.AttractionRating) error {
	if rating.ID == "" {
		return errors.New("rating ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(attractionRatingsCollection).Doc(rating.ID).Set(ctx, rating)
	if err != nil {
		return fmt.Errorf("failed to update attraction rating with ID '%s': %w", rating.ID, err)
	}
	return nil
}
