package models

import "time"

// Family goal lifecycle: pending -> active|declined, active -> completed.
const (
	GoalStatusPending   = "pending"
	GoalStatusActive    = "active"
	GoalStatusDeclined  = "declined"
	GoalStatusCompleted = "completed"
)

// FamilyGoal is a suggested shared behavioral focus between two circle members.
// Tip is generated text and may be empty when generation was unavailable.
type FamilyGoal struct {
	ID          string     `json:"id" firestore:"-"` // Document ID, auto-generated
	FromUserID  string     `json:"fromUserId" firestore:"fromUserId"`
	ToUserID    string     `json:"toUserId" firestore:"toUserId"`
	CircleID    string     `json:"circleId" firestore:"circleId"`
	Trait       string     `json:"trait" firestore:"trait"`
	Tip         string     `json:"tip,omitempty" firestore:"tip,omitempty"`
	Status      string     `json:"status" firestore:"status"`
	RespondedAt *time.Time `json:"respondedAt,omitempty" firestore:"respondedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
