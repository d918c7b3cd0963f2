package models

import "time"

// Feedback is a free-form product feedback record, write-only from the app's
// perspective.
type Feedback struct {
	ID        string    `json:"id" firestore:"-"` // Document ID, auto-generated
	UserID    string    `json:"userId" firestore:"userId"`
	Message   string    `json:"message" firestore:"message"`
	Rating    int       `json:"rating,omitempty" firestore:"rating,omitempty"` // optional 1..5
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
