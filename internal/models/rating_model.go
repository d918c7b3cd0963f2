package models

import (
	"fmt"
	"time"
)

// Rating is one user's trait-score submission about another within a circle.
// Uniqueness per (fromUser, toUser, circle) is structural: the document ID is
// derived from the tuple, so a resubmission overwrites the earlier document.
type Rating struct {
	ID         string         `json:"id" firestore:"-"`
	FromUserID string         `json:"fromUserId" firestore:"fromUserId"`
	ToUserID   string         `json:"toUserId" firestore:"toUserId"`
	CircleID   string         `json:"circleId" firestore:"circleId"`
	CircleType string         `json:"circleType" firestore:"circleType"` // denormalized for per-kind aggregation
	Scores     map[string]int `json:"scores" firestore:"scores"`         // trait name -> 1..5
	CreatedAt  time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt  time.Time      `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// RatingDocID builds the deterministic document ID for a rating tuple.
func RatingDocID(fromUserID, toUserID, circleID string) string {
	return fmt.Sprintf("%s_%s_%s", fromUserID, toUserID, circleID)
}
