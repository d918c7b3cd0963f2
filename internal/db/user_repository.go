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

const usersCollection = "users"

// ErrNotFound is the common error for when a document is not found in Firestore.
// All repositories in this package wrap it so services can errors.Is against one value.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

// GetByID retrieves a user document by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// GetByEmail retrieves the user document whose email field equals the given
// address. Addresses are stored lowercased, so callers must lowercase first.
func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty for GetByEmail operation")
	}

	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email '%s': %w", email, err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for email '%s': %w", email, err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}

// SearchByNamePrefix returns users whose display name starts with the given
// prefix, using the standard Firestore range-scan trick: "\uf8ff" is a high
// code point, so the range covers every string with that prefix.
func (r *firestoreUserRepository) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	if prefix == "" {
		return nil, errors.New("prefix cannot be empty for SearchByNamePrefix operation")
	}
	if limit <= 0 {
		limit = 10
	}

	query := r.client.Collection(usersCollection).
		Where("displayName", ">=", prefix).
		Where("displayName", "<=", prefix+"\uf8ff").
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var users []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users for prefix '%s': %w", prefix, err)
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Error decoding user data (ID: %s) during search: %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}

	return users, nil
}

// Create adds a new user document. The user.ID (Firebase Auth UID) is used as
// the Firestore document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// Update overwrites an existing user document. Services always write the full
// document they loaded, so a plain Set gives last-write-wins semantics; fields
// tagged omitempty (like subscriptionId) disappear when cleared.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// provisionUserData flattens the user document into map form for the
// provisioning merge write; Set only accepts merge options with map data.
// Absent optional fields are left out of the map so the merge cannot clear
// them, and the timestamps use the server-time sentinel the struct tags
// would otherwise provide.
func provisionUserData(user *models.User) map[string]interface{} {
	data := map[string]interface{}{
		"email":               user.Email,
		"isPremium":           user.IsPremium,
		"isAdmin":             user.IsAdmin,
		"ecoScore":            user.EcoScore,
		"familyScore":         user.FamilyScore,
		"attractionScore":     user.AttractionScore,
		"revealTokens":        user.RevealTokens,
		"revealTokensResetAt": user.RevealTokensResetAt,
		"createdAt":           firestore.ServerTimestamp,
		"updatedAt":           firestore.ServerTimestamp,
	}
	if user.DisplayName != "" {
		data["displayName"] = user.DisplayName
	}
	if user.PhotoURL != "" {
		data["photoURL"] = user.PhotoURL
	}
	if user.SubscriptionID != "" {
		data["subscriptionId"] = user.SubscriptionID
	}
	return data
}

// CreateWithDefaultCircles writes the user document and its default circles in
// one atomic transaction. The user document is merged rather than overwritten
// so a subscription webhook racing signup cannot be clobbered; the circle
// documents are strict creates. Circle IDs are assigned here.
func (r *firestoreUserRepository) CreateWithDefaultCircles(ctx context.Context, user *models.User, circles []*models.Circle) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for CreateWithDefaultCircles operation")
	}

	userRef := r.client.Collection(usersCollection).Doc(user.ID)
	circleRefs := make([]*firestore.DocumentRef, len(circles))
	for i, circle := range circles {
		ref := r.client.Collection(circlesCollection).NewDoc()
		circle.ID = ref.ID
		circleRefs[i] = ref
	}

	err := r.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(userRef, provisionUserData(user), firestore.MergeAll); err != nil {
			return err
		}
		for i, circle := range circles {
			if err := tx.Create(circleRefs[i], circle); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to provision user '%s' with default circles: %w", user.ID, err)
	}
	return nil
}
