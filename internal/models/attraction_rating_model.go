package models

import (
	"fmt"
	"time"
)

// AttractionTraits are the traits scored in a premium attraction rating.
var AttractionTraits = []string{"appearance", "charisma", "style"}

// AttractionRating is the premium analogue of Rating. It is not bound to a
// circle; uniqueness is per (fromUser, toUser) via a derived document ID.
// RevealStatus is empty until the ratee requests a reveal of an anonymous
// author, then follows pending -> accepted|declined.
type AttractionRating struct {
	ID           string         `json:"id" firestore:"-"`
	FromUserID   string         `json:"fromUserId" firestore:"fromUserId"`
	ToUserID     string         `json:"toUserId" firestore:"toUserId"`
	Scores       map[string]int `json:"scores" firestore:"scores"` // trait name -> 1..5
	Anonymous    bool           `json:"anonymous" firestore:"anonymous"`
	RevealStatus string         `json:"revealStatus,omitempty" firestore:"revealStatus,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time      `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// AttractionRatingDocID builds the deterministic document ID for a rater/ratee pair.
func AttractionRatingDocID(fromUserID, toUserID string) string {
	return fmt.Sprintf("%s_%s", fromUserID, toUserID)
}

// AttractionRatingView is the ratee-facing projection of an attraction rating.
// Author identity fields stay empty while the rating is anonymous and no
// reveal has been accepted.
type AttractionRatingView struct {
	ID           string         `json:"id"`
	FromUserID   string         `json:"fromUserId,omitempty"`
	FromName     string         `json:"fromName,omitempty"`
	Scores       map[string]int `json:"scores"`
	Anonymous    bool           `json:"anonymous"`
	RevealStatus string         `json:"revealStatus,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}
