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

const circlesCollection = "circles"

// firestoreCircleRepository implements the CircleRepository interface using Firestore.
type firestoreCircleRepository struct {
	client *firestore.Client
}

// NewFirestoreCircleRepository creates a new instance of firestoreCircleRepository.
func NewFirestoreCircleRepository(client *firestore.Client) CircleRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CircleRepository.")
	}
	return &firestoreCircleRepository{client: client}
}

// Create adds a new circle document with an auto-generated ID.
// It sets circle.ID with the new document ID before creation.
func (r *firestoreCircleRepository) Create(ctx context.Context, circle *models.Circle) (string, error) {
	docRef := r.client.Collection(circlesCollection).NewDoc()
	circle.ID = docRef.ID

	_, err := docRef.Create(ctx, circle)
	if err != nil {
		return "", fmt.Errorf("failed to create circle: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a circle document by its ID.
func (r *firestoreCircleRepository) GetByID(ctx context.Context, circleID string) (*models.Circle, error) {
	if circleID == "" {
		return nil, errors.New("circleID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(circlesCollection).Doc(circleID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("circle with ID '%s' not found: %w", circleID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get circle with ID '%s': %w", circleID, err)
	}

	var circle models.Circle
	if err := docSnap.DataTo(&circle); err != nil {
		return nil, fmt.Errorf("failed to decode circle data for ID '%s': %w", circleID, err)
	}
	circle.ID = docSnap.Ref.ID

	return &circle, nil
}

// GetByMemberID retrieves all circles the given user belongs to.
func (r *firestoreCircleRepository) GetByMemberID(ctx context.Context, userID string) ([]*models.Circle, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByMemberID operation")
	}

	query := r.client.Collection(circlesCollection).Where("memberIds", "array-contains", userID)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var circles []*models.Circle
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate circles for member '%s': %w", userID, err)
		}

		var circle models.Circle
		if err := doc.DataTo(&circle); err != nil {
			log.Printf("Error decoding circle data (ID: %s) for member '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		circle.ID = doc.Ref.ID
		circles = append(circles, &circle)
	}

	return circles, nil
}

// Update overwrites an existing circle document with a plain Set; services
// write the full document they loaded, last-write-wins.
func (r *firestoreCircleRepository) Update(ctx context.Context, circle *models.Circle) error {
	if circle.ID == "" {
		return errors.New("circle ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(circlesCollection).Doc(circle.ID).Set(ctx, circle)
	if err != nil {
		return fmt.Errorf("failed to update circle with ID '%s': %w", circle.ID, err)
	}
	return nil
}

// AddMember appends userID to the circle's member list. ArrayUnion keeps the
// list free of duplicates even under concurrent joins.
func (r *firestoreCircleRepository) AddMember(ctx context.Context, circleID, userID string) error {
	if circleID == "" || userID == "" {
		return errors.New("circleID and userID cannot be empty for AddMember operation")
	}
	_, err := r.client.Collection(circlesCollection).Doc(circleID).Update(ctx, []firestore.Update{
		{Path: "memberIds", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("circle with ID '%s' not found for AddMember: %w", circleID, ErrNotFound)
		}
		return fmt.Errorf("failed to add member '%s' to circle '%s': %w", userID, circleID, err)
	}
	return nil
}

// RemoveMember removes userID from the circle's member list.
func (r *firestoreCircleRepository) RemoveMember(ctx context.Context, circleID, userID string) error {
	if circleID == "" || userID == "" {
		return errors.New("circleID and userID cannot be empty for RemoveMember operation")
	}
	_, err := r.client.Collection(circlesCollection).Doc(circleID).Update(ctx, []firestore.Update{
		{Path: "memberIds", Value: firestore.ArrayRemove(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("circle with ID '%s' not found for RemoveMember: %w", circleID, ErrNotFound)
		}
		return fmt.Errorf("failed to remove member '%s' from circle '%s': %w", userID, circleID, err)
	}
	return nil
}
