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

const revealRequestsCollection = "revealRequests"

// firestoreRevealRequestRepository implements the RevealRequestRepository
// interface using Firestore.
type firestoreRevealRequestRepository struct {
	client *firestore.Client
}

// NewFirestoreRevealRequestRepository creates a new instance of firestoreRevealRequestRepository.
func NewFirestoreRevealRequestRepository(client *firestore.Client) RevealRequestRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for RevealRequestRepository.")
	}
	return &firestoreRevealRequestRepository{client: client}
}

// Create adds a new reveal request document with an auto-generated ID.
func (r *firestoreRevealRequestRepository) Create(ctx context.Context, req *models.RevealRequest) (string, error) {
	docRef := r.client.Collection(revealRequestsCollection).NewDoc()
	req.ID = docRef.ID

	_, err := docRef.Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create reveal request: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a reveal request document by its ID.
func (r *firestoreRevealRequestRepository) GetByID(ctx context.Context, requestID string) (*models.RevealRequest, error) {
	if requestID == "" {
		return nil, errors.New("requestID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(revealRequestsCollection).Doc(requestID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("reveal request with ID '%s' not found: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reveal request with ID '%s': %w", requestID, err)
	}

	var req models.RevealRequest
	if err := docSnap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode reveal request data for ID '%s': %w", requestID, err)
	}
	req.ID = docSnap.Ref.ID

	return &req, nil
}

// GetPendingByTarget retrieves the pending reveal requests addressed to the
// given user as the anonymous author.
func (r *firestoreRevealRequestRepository) GetPendingByTarget(ctx context.Context, targetUserID string) ([]*models.RevealRequest, error) {
	if targetUserID == "" {
		return nil, errors.New("targetUserID cannot be empty for GetPendingByTarget operation")
	}

	query := r.client.Collection(revealRequestsCollection).
		Where("targetUserId", "==", targetUserID).
		Where("status", "==", models.RevealStatusPending)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var requests []*models.RevealRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reveal requests for target '%s': %w", targetUserID, err)
		}

		var req models.RevealRequest
		if err := doc.DataTo(&req); err != nil {
			log.Printf("Error decoding reveal request data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		req.ID = doc.Ref.ID
		requests = append(requests, &req)
	}

	return requests, nil
}

// CountPendingByTarget counts the pending reveal requests addressed to the given user.
func (r *firestoreRevealRequestRepository) CountPendingByTarget(ctx context.Context, targetUserID string) (int, error) {
	if targetUserID == "" {
		return 0, errors.New("targetUserID cannot be empty for CountPendingByTarget operation")
	}

	query := r.client.Collection(revealRequestsCollection).
		Where("targetUserId", "==", targetUserID).
		Where("status", "==", models.RevealStatusPending)

	iter := query.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate reveal requests for counting (target '%s'): %w", targetUserID, err)
		}
		count++
	}
	return count, nil
}

// FindPendingByRating returns the pending reveal request for the given rating,
// or ErrNotFound when none is open.
func (r *firestoreRevealRequestRepository) FindPendingByRating(ctx context.Context, ratingID string) (*models.RevealRequest, error) {
	if ratingID == "" {
		return nil, errors.New("ratingID cannot be empty for FindPendingByRating operation")
	}

	query := r.client.Collection(revealRequestsCollection).
		Where("ratingId", "==", ratingID).
		Where("status", "==", models.RevealStatusPending).
		Limit(1)

	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no pending reveal request for rating '%s': %w", ratingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending reveal request for rating '%s': %w", ratingID, err)
	}

	var req models.RevealRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode reveal request data for rating '%s': %w", ratingID, err)
	}
	req.ID = doc.Ref.ID

	return &req, nil
}

// Update overwrites an existing reveal request with a plain Set.
func (r *firestoreRevealRequestRepository) Update(ctx context.Context, req *models.RevealRequest) error {
	if req.ID == "" {
		return errors.New("request ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(revealRequestsCollection).Doc(req.ID).Set(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to update reveal request with ID '%s': %w", req.ID, err)
	}
	return nil
}
