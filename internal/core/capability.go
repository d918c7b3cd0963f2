package core

import (
	"errors"

	"mirrornet-backend-go/internal/models"
)

// ErrPremiumRequired is returned when a free-tier user calls a premium feature.
var ErrPremiumRequired = errors.New("this feature requires a premium subscription")

// Capabilities is the resolved feature flag set for one user. Services and
// handlers consult these flags instead of reading tier booleans directly, so
// the tier-to-feature mapping lives in exactly one place.
type Capabilities struct {
	AttractionRatings bool `json:"attractionRatings"`
	RevealRequests    bool `json:"revealRequests"`
	GoalSuggestions   bool `json:"goalSuggestions"`
	AdminPanel        bool `json:"adminPanel"`
}

// ResolveCapabilities derives the capability set from a user document.
func ResolveCapabilities(user *models.User) Capabilities {
	if user == nil {
		return Capabilities{}
	}
	return Capabilities{
		AttractionRatings: user.IsPremium,
		RevealRequests:    user.IsPremium,
		GoalSuggestions:   user.IsPremium,
		AdminPanel:        user.IsAdmin,
	}
}
