package models

import "time"

// Invite lifecycle states.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
)

// Invite is a pending circle-membership invitation, addressed by email.
// ToUserID is empty until the invitee has an account; provisioning rewrites
// pending invites for the new user's email to carry their UID.
type Invite struct {
	ID          string     `json:"id" firestore:"-"` // Document ID, auto-generated
	CircleID    string     `json:"circleId" firestore:"circleId"`
	CircleName  string     `json:"circleName,omitempty" firestore:"circleName,omitempty"` // denormalized for display
	FromUserID  string     `json:"fromUserId" firestore:"fromUserId"`
	FromName    string     `json:"fromName,omitempty" firestore:"fromName,omitempty"`
	ToEmail     string     `json:"toEmail" firestore:"toEmail"` // stored lowercased
	ToUserID    string     `json:"toUserId,omitempty" firestore:"toUserId,omitempty"`
	Status      string     `json:"status" firestore:"status"`
	RespondedAt *time.Time `json:"respondedAt,omitempty" firestore:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
