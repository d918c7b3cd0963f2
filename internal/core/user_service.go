package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user profile does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEmptySearchQuery is returned when a user search is attempted with a blank query.
var ErrEmptySearchQuery = errors.New("search query cannot be empty")

// searchResultLimit caps the number of profiles returned by a search.
const searchResultLimit = 10

// userService implements the UserService interface.
type userService struct {
	userRepo             db.UserRepository
	inviteRepo           db.InviteRepository
	auditService         AuditService
	revealTokenAllowance int
}

// NewUserService creates a new UserService instance. The reveal token
// allowance is the monthly balance granted to fresh profiles.
func NewUserService(ur db.UserRepository, ir db.InviteRepository, as AuditService, revealTokenAllowance int) UserService {
	return &userService{
		userRepo:             ur,
		inviteRepo:           ir,
		auditService:         as,
		revealTokenAllowance: revealTokenAllowance,
	}
}

// firstOfNextMonth returns midnight UTC on the first day of the month after now.
func firstOfNextMonth(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// InitializeProfile returns the profile for an authenticated identity,
// creating it on first login. Creation writes the user document and one
// circle per default kind in a single transaction, so a crash can never leave
// a profile without its circles. Invite adoption runs after the commit and is
// retried on every subsequent login, which makes its best-effort nature safe.
func (s *userService) InitializeProfile(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	if s.userRepo == nil {
		return nil, false, errors.New("userService: userRepo not initialized")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		// Existing profile. Adoption still runs so invites sent while the
		// user was away get linked on the next login.
		s.adoptPendingInvites(ctx, userID, email)
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:                  userID,
		Email:               strings.ToLower(email),
		DisplayName:         displayName,
		PhotoURL:            photoURL,
		IsPremium:           false,
		IsAdmin:             false,
		RevealTokens:        s.revealTokenAllowance,
		RevealTokensResetAt: firstOfNextMonth(now),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	circles := make([]*models.Circle, 0, len(models.DefaultCircleTypes))
	for _, circleType := range models.DefaultCircleTypes {
		circles = append(circles, &models.Circle{
			Name:        models.DefaultCircleName(circleType),
			Type:        circleType,
			OwnerID:     userID,
			MemberIDs:   []string{userID},
			TraitScores: initialTraitScores(circleType),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.userRepo.CreateWithDefaultCircles(ctx, newUser, circles); err != nil {
		return nil, false, fmt.Errorf("failed to provision user '%s': %w", userID, err)
	}

	s.adoptPendingInvites(ctx, userID, email)

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "USER_PROVISION",
			TargetType: "USER",
			TargetID:   userID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"email":          newUser.Email,
				"defaultCircles": len(circles),
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for USER_PROVISION (userID: %s): %v\n", userID, auditErr)
		}
	}

	return newUser, true, nil
}

// adoptPendingInvites links pending invites addressed to the user's email to
// their user ID. Failures are logged and swallowed; the next login retries.
func (s *userService) adoptPendingInvites(ctx context.Context, userID, email string) {
	if s.inviteRepo == nil || email == "" {
		return
	}

	invites, err := s.inviteRepo.GetPendingByEmail(ctx, email)
	if err != nil {
		fmt.Printf("Warning: failed to list pending invites for adoption (userID: %s): %v\n", userID, err)
		return
	}

	for _, invite := range invites {
		if invite.ToUserID != "" {
			continue
		}
		invite.ToUserID = userID
		if err := s.inviteRepo.Update(ctx, invite); err != nil {
			fmt.Printf("Warning: failed to adopt invite '%s' for user '%s': %v\n", invite.ID, userID, err)
		}
	}
}

// GetByID retrieves a user profile by its ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if s.userRepo == nil {
		return nil, errors.New("userService: userRepo not initialized")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// Search finds users by display name prefix, or by exact email when the
// query looks like an address. The caller is excluded from the results.
func (s *userService) Search(ctx context.Context, callerID, query string) ([]*models.UserSearchResult, error) {
	if s.userRepo == nil {
		return nil, errors.New("userService: userRepo not initialized")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}

	if strings.Contains(query, "@") {
		user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(query))
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return []*models.UserSearchResult{}, nil
			}
			return nil, fmt.Errorf("failed to search user by email: %w", err)
		}
		if user.ID == callerID {
			return []*models.UserSearchResult{}, nil
		}
		return []*models.UserSearchResult{searchResultFromUser(user)}, nil
	}

	users, err := s.userRepo.SearchByNamePrefix(ctx, query, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users by name prefix: %w", err)
	}

	results := make([]*models.UserSearchResult, 0, len(users))
	for _, user := range users {
		if user.ID == callerID {
			continue
		}
		results = append(results, searchResultFromUser(user))
	}
	return results, nil
}

func searchResultFromUser(user *models.User) *models.UserSearchResult {
	return &models.UserSearchResult{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		PhotoURL:    user.PhotoURL,
		IsPremium:   user.IsPremium,
	}
}
