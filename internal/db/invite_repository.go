package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mirrornet-backend-go/internal/models"
)

const invitesCollection = "invites"

// firestoreInviteRepository implements the InviteRepository interface using Firestore.
type firestoreInviteRepository struct {
	client *firestore.Client
}

// NewFirestoreInviteRepository creates a new instance of firestoreInviteRepository.
func NewFirestoreInviteRepository(client *firestore.Client) InviteRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for InviteRepository.")
	}
	return &firestoreInviteRepository{client: client}
}

// Create adds a new invite document with an auto-generated ID.
func (r *firestoreInviteRepository) Create(ctx context.Context, invite *models.Invite) (string, error) {
	docRef := r.client.Collection(invitesCollection).NewDoc()
	invite.ID = docRef.ID

	_, err := docRef.Create(ctx, invite)
	if err != nil {
		return "", fmt.Errorf("failed to create invite: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves an invite document by its ID.
func (r *firestoreInviteRepository) GetByID(ctx context.Context, inviteID string) (*models.Invite, error) {
	if inviteID == "" {
		return nil, errors.New("inviteID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(invitesCollection).Doc(inviteID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("invite with ID '%s' not found: %w", inviteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invite with ID '%s': %w", inviteID, err)
	}

	var invite models.Invite
	if err := docSnap.DataTo(&invite); err != nil {
		return nil, fmt.Errorf("failed to decode invite data for ID '%s': %w", inviteID, err)
	}
	invite.ID = docSnap.Ref.ID

	return &invite, nil
}

// GetPendingByEmail retrieves the pending invites addressed to an email.
// Invites are stored with lowercased addresses, so the lookup lowercases too.
func (r *firestoreInviteRepository) GetPendingByEmail(ctx context.Context, email string) ([]*models.Invite, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty for GetPendingByEmail operation")
	}

	query := r.client.Collection(invitesCollection).
		Where("toEmail", "==", strings.ToLower(email)).
		Where("status", "==", models.InviteStatusPending)

	return r.queryInvites(ctx, query)
}

// GetPendingByToUser retrieves the pending invites already linked to a user ID.
func (r *firestoreInviteRepository) GetPendingByToUser(ctx context.Context, toUserID string) ([]*models.Invite, error) {
	if toUserID == "" {
		return nil, errors.New("toUserID cannot be empty for GetPendingByToUser operation")
	}

	query := r.client.Collection(invitesCollection).
		Where("toUserId", "==", toUserID).
		Where("status", "==", models.InviteStatusPending)

	return r.queryInvites(ctx, query)
}

// FindPendingByCircleAndEmail returns the open invite for the circle/email
// pair, or ErrNotFound when there is none.
func (r *firestoreInviteRepository) FindPendingByCircleAndEmail(ctx context.Context, circleID, email string) (*models.Invite, error) {
	if circleID == "" || email == "" {
		return nil, errors.New("circleID and email cannot be empty for FindPendingByCircleAndEmail operation")
	}

	query := r.client.Collection(invitesCollection).
		Where("circleId", "==", circleID).
		Where("toEmail", "==", strings.ToLower(email)).
		Where("status", "==", models.InviteStatusPending).
		Limit(1)

	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no pending invite for circle '%s' and email '%s': %w", circleID, email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending invite for circle '%s': %w", circleID, err)
	}

	var invite models.Invite
	if err := doc.DataTo(&invite); err != nil {
		return nil, fmt.Errorf("failed to decode invite data for circle '%s': %w", circleID, err)
	}
	invite.ID = doc.Ref.ID

	return &invite, nil
}

// Update overwrites an existing invite with a plain Set.
func (r *firestoreInviteRepository) Update(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		return errors.New("invite ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(invitesCollection).Doc(invite.ID).Set(ctx, invite)
	if err != nil {
		return fmt.Errorf("failed to update invite with ID '%s': %w", invite.ID, err)
	}
	return nil
}

// queryInvites runs a prepared query and decodes every document into an invite.
func (r *firestoreInviteRepository) queryInvites(ctx context.Context, query firestore.Query) ([]*models.Invite, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var invites []*models.Invite
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate invites: %w", err)
		}

		var invite models.Invite
		if err := doc.DataTo(&invite); err != nil {
			log.Printf("Error decoding invite data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		invite.ID = doc.Ref.ID
		invites = append(invites, &invite)
	}

	return invites, nil
}
