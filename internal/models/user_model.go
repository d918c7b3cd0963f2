package models

import "time"

// ScoreAggregate is a running average over received ratings.
type ScoreAggregate struct {
	Average float64 `json:"average" firestore:"average"`
	Count   int     `json:"count" firestore:"count"`
}

// User represents a user in the system.
type User struct {
	ID                  string         `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email               string         `json:"email" firestore:"email"`
	DisplayName         string         `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL            string         `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	IsPremium           bool           `json:"isPremium" firestore:"isPremium"`
	IsAdmin             bool           `json:"isAdmin" firestore:"isAdmin"`
	EcoScore            ScoreAggregate `json:"ecoScore" firestore:"ecoScore"`                       // across all circle ratings received
	FamilyScore         ScoreAggregate `json:"familyScore" firestore:"familyScore"`                 // family-circle ratings only
	AttractionScore     ScoreAggregate `json:"attractionScore" firestore:"attractionScore"`         // premium attraction ratings received
	RevealTokens        int            `json:"revealTokens" firestore:"revealTokens"`               // never negative
	RevealTokensResetAt time.Time      `json:"revealTokensResetAt" firestore:"revealTokensResetAt"` // next scheduled replenishment
	SubscriptionID      string         `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
	CreatedAt           time.Time      `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt           time.Time      `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// UserSearchResult is the compact projection returned by user search.
type UserSearchResult struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
	IsPremium   bool   `json:"isPremium"`
}

// TraitCircleScore is one circle's slice of a user's per-trait breakdown.
type TraitCircleScore struct {
	CircleID   string  `json:"circleId"`
	CircleName string  `json:"circleName"`
	CircleType string  `json:"circleType"`
	Average    float64 `json:"average"`
	Count      int     `json:"count"`
}
