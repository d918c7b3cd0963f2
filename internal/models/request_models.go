package models

// CreateCircleRequest represents the request body for creating a circle explicitly.
type CreateCircleRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"` // one of the CircleType* constants
}

// SubmitRatingRequest represents the request body for rating a circle member.
type SubmitRatingRequest struct {
	ToUserID string         `json:"toUserId" binding:"required"`
	Scores   map[string]int `json:"scores" binding:"required"` // trait name -> 1..5
}

// SubmitAttractionRatingRequest represents the request body for a premium attraction rating.
type SubmitAttractionRatingRequest struct {
	ToUserID  string         `json:"toUserId" binding:"required"`
	Scores    map[string]int `json:"scores" binding:"required"`
	Anonymous bool           `json:"anonymous"`
}

// CreateRevealRequest represents the request body for asking an anonymous
// rating's author to disclose their identity.
type CreateRevealRequest struct {
	RatingID string `json:"ratingId" binding:"required"`
}

// SuggestGoalRequest represents the request body for suggesting a family goal.
type SuggestGoalRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	CircleID string `json:"circleId" binding:"required"`
	Trait    string `json:"trait" binding:"required"`
}

// SendInviteRequest represents the request body for inviting someone to a circle.
type SendInviteRequest struct {
	CircleID string `json:"circleId" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// RespondRequest is the shared accept/decline body for invites, goals and
// reveal requests. Accept is a pointer so an explicit false still binds.
type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// SubmitFeedbackRequest represents the request body for product feedback.
type SubmitFeedbackRequest struct {
	Message string `json:"message" binding:"required"`
	Rating  int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}
