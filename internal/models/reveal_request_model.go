package models

import "time"

// Reveal lifecycle states, shared by RevealRequest.Status and
// AttractionRating.RevealStatus.
const (
	RevealStatusPending  = "pending"
	RevealStatusAccepted = "accepted"
	RevealStatusDeclined = "declined"
)

// RevealRequest asks the anonymous author of an attraction rating to disclose
// their identity to the ratee. The requester is the ratee; the target is the
// author who must accept or decline.
type RevealRequest struct {
	ID           string     `json:"id" firestore:"-"` // Document ID, auto-generated
	RatingID     string     `json:"ratingId" firestore:"ratingId"`
	RequesterID  string     `json:"requesterId" firestore:"requesterId"`
	TargetUserID string     `json:"targetUserId" firestore:"targetUserId"`
	Status       string     `json:"status" firestore:"status"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty" firestore:"respondedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
