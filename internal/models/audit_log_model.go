package models

import "time"

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Who performed the action
	Action     string                 `json:"action" firestore:"action"` // e.g., "CIRCLE_MEMBER_REMOVE", "INVITE_SEND"
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // e.g., "CIRCLE", "INVITE", "GOAL"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	RequestID  string                 `json:"requestId,omitempty" firestore:"requestId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
