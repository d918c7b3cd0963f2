package models

import "time"

// Circle kinds. Every user gets one circle of each kind at signup.
const (
	CircleTypeFriends = "friends"
	CircleTypeFamily  = "family"
	CircleTypeWork    = "work"
	CircleTypeGeneral = "general"
)

// DefaultCircleTypes lists the kinds provisioned for a new user, in creation order.
var DefaultCircleTypes = []string{CircleTypeFriends, CircleTypeFamily, CircleTypeWork, CircleTypeGeneral}

var defaultCircleNames = map[string]string{
	CircleTypeFriends: "Friends",
	CircleTypeFamily:  "Family",
	CircleTypeWork:    "Work",
	CircleTypeGeneral: "General",
}

// TraitsByCircleType maps each circle kind to the traits members rate each other on.
var TraitsByCircleType = map[string][]string{
	CircleTypeFriends: {"trust", "loyalty", "fun", "honesty"},
	CircleTypeFamily:  {"support", "communication", "respect", "patience"},
	CircleTypeWork:    {"professionalism", "teamwork", "reliability", "punctuality"},
	CircleTypeGeneral: {"kindness", "fairness", "integrity", "helpfulness"},
}

// IsValidCircleType reports whether t is one of the four known circle kinds.
func IsValidCircleType(t string) bool {
	_, ok := defaultCircleNames[t]
	return ok
}

// DefaultCircleName returns the display name used for a provisioned circle of the given kind.
func DefaultCircleName(circleType string) string {
	return defaultCircleNames[circleType]
}

// Circle represents a named grouping of users sharing one relationship context.
type Circle struct {
	ID          string                    `json:"id" firestore:"-"` // Document ID, auto-generated
	Name        string                    `json:"name" firestore:"name"`
	Type        string                    `json:"type" firestore:"type"`       // one of the CircleType* constants
	OwnerID     string                    `json:"ownerId" firestore:"ownerId"` // Firebase Auth UID of the owner
	MemberIDs   []string                  `json:"memberIds" firestore:"memberIds"`
	TraitScores map[string]ScoreAggregate `json:"traitScores,omitempty" firestore:"traitScores,omitempty"` // trait name -> aggregate over all ratings in this circle
	CreatedAt   time.Time                 `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time                 `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// HasMember reports whether userID is in the circle's member list.
func (c *Circle) HasMember(userID string) bool {
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CircleMember is a member row in the circle detail view, with the
// viewer-dependent flags resolved server-side.
type CircleMember struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	IsPremium   bool   `json:"isPremium"`
	RatedByMe   bool   `json:"ratedByMe"`
	CanRemove   bool   `json:"canRemove"`
}

// CircleDetail is the full circle page payload.
type CircleDetail struct {
	Circle  *Circle        `json:"circle"`
	Members []CircleMember `json:"members"`
}
