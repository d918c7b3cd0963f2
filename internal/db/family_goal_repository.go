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

const familyGoalsCollection = "familyGoals"

// firestoreFamilyGoalRepository implements the FamilyGoalRepository interface
// using Firestore.
type firestoreFamilyGoalRepository struct {
	client *firestore.Client
}

// NewFirestoreFamilyGoalRepository creates a new instance of firestoreFamilyGoalRepository.
func NewFirestoreFamilyGoalRepository(client *firestore.Client) FamilyGoalRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for FamilyGoalRepository.")
	}
	return &firestoreFamilyGoalRepository{client: client}
}

// Create adds a new family goal document with an auto-generated ID.
func (r *firestoreFamilyGoalRepository) Create(ctx context.Context, goal *models.FamilyGoal) (string, error) {
	docRef := r.client.Collection(familyGoalsCollection).NewDoc()
	goal.ID = docRef.ID

	_, err := docRef.Create(ctx, goal)
	if err != nil {
		return "", fmt.Errorf("failed to create family goal: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a family goal document by its ID.
func (r *firestoreFamilyGoalRepository) GetByID(ctx context.Context, goalID string) (*models.FamilyGoal, error) {
	if goalID == "" {
		return nil, errors.New("goalID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(familyGoalsCollection).Doc(goalID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("family goal with ID '%s' not found: %w", goalID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get family goal with ID '%s': %w", goalID, err)
	}

	var goal models.FamilyGoal
	if err := docSnap.DataTo(&goal); err != nil {
		return nil, fmt.Errorf("failed to decode family goal data for ID '%s': %w", goalID, err)
	}
	goal.ID = docSnap.Ref.ID

	return &goal, nil
}

// GetByParticipant retrieves every goal where the user is either the suggester
// or the recipient. Firestore has no OR queries across fields, so this runs
// one query per side and merges the results.
func (r *firestoreFamilyGoalRepository) GetByParticipant(ctx context.Context, userID string) ([]*models.FamilyGoal, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByParticipant operation")
	}

	var goals []*models.FamilyGoal
	seen := make(map[string]bool)

	for _, field := range []string{"fromUserId", "toUserId"} {
		query := r.client.Collection(familyGoalsCollection).Where(field, "==", userID)
		iter := query.Documents(ctx)

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, fmt.Errorf("failed to iterate family goals for user '%s': %w", userID, err)
			}
			if seen[doc.Ref.ID] {
				continue
			}

			var goal models.FamilyGoal
			if err := doc.DataTo(&goal); err != nil {
				log.Printf("Error decoding family goal data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
				continue
			}
			goal.ID = doc.Ref.ID
			goals = append(goals, &goal)
			seen[doc.Ref.ID] = true
		}
		iter.Stop()
	}

	return goals, nil
}

// CountPendingByTarget counts goals awaiting a response from the given user.
func (r *firestoreFamilyGoalRepository) CountPendingByTarget(ctx context.Context, toUserID string) (int, error) {
	if toUserID == "" {
		return 0, errors.New("toUserID cannot be empty for CountPendingByTarget operation")
	}

	query := r.client.Collection(familyGoalsCollection).
		Where("toUserId", "==", toUserID).
		Where("status", "==", models.GoalStatusPending)

	iter := query.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate family goals for counting (target '%s'): %w", toUserID, err)
		}
		count++
	}
	return count, nil
}

// Update overwrites an existing family goal with a plain Set.
func (r *firestoreFamilyGoalRepository) Update(ctx context.Context, goal *models.FamilyGoal) error {
	if goal.ID == "" {
		return errors.New("goal ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(familyGoalsCollection).Doc(goal.ID).Set(ctx, goal)
	if err != nil {
		return fmt.Errorf("failed to update family goal with ID '%s': %w", goal.ID, err)
	}
	return nil
}
