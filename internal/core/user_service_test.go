package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrornet-backend-go/internal/models"
)

func TestInitializeProfile_ProvisionsUserDefaultCirclesAndAdoptsInvites(t *testing.T) {
	userRepo := newFakeUserRepo()
	inviteRepo := newFakeInviteRepo(
		&models.Invite{ID: "inv-1", CircleID: "c9", ToEmail: "a@x.com", Status: models.InviteStatusPending},
	)
	auditRepo := &fakeAuditRepo{}
	service := NewUserService(userRepo, inviteRepo, NewAuditService(auditRepo), 3)

	user, created, err := service.InitializeProfile(context.Background(), "uid-1", "A@X.com", "Ada", "https://img/ada.png")
	require.NoError(t, err)
	assert.True(t, created)

	// Email is normalized, tokens granted, reset scheduled.
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, 3, user.RevealTokens)
	assert.False(t, user.RevealTokensResetAt.IsZero())
	assert.False(t, user.IsPremium)

	// One circle per default kind, owned by the new user with themselves
	// as sole member.
	require.Len(t, userRepo.provisionedCircles, len(models.DefaultCircleTypes))
	seenTypes := make(map[string]bool)
	for _, circle := range userRepo.provisionedCircles {
		assert.Equal(t, "uid-1", circle.OwnerID)
		assert.Equal(t, []string{"uid-1"}, circle.MemberIDs)
		assert.NotEmpty(t, circle.TraitScores)
		seenTypes[circle.Type] = true
	}
	for _, circleType := range models.DefaultCircleTypes {
		assert.True(t, seenTypes[circleType], "missing default circle of type %s", circleType)
	}

	// The pending invite addressed to the email is now linked to the UID.
	adopted, err := inviteRepo.GetByID(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", adopted.ToUserID)
}

func TestInitializeProfile_ExistingProfileIsNotReprovisioned(t *testing.T) {
	existing := &models.User{ID: "uid-1", Email: "a@x.com", DisplayName: "Ada"}
	userRepo := newFakeUserRepo(existing)
	service := NewUserService(userRepo, newFakeInviteRepo(), nil, 3)

	user, created, err := service.InitializeProfile(context.Background(), "uid-1", "a@x.com", "Ada", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, user)
	assert.Empty(t, userRepo.provisionedCircles)
}

func TestInitializeProfile_InviteAdoptionFailureDoesNotFailProvisioning(t *testing.T) {
	userRepo := newFakeUserRepo()
	inviteRepo := newFakeInviteRepo()
	inviteRepo.listErr = errors.New("invites unavailable")
	service := NewUserService(userRepo, inviteRepo, nil, 3)

	_, created, err := service.InitializeProfile(context.Background(), "uid-2", "b@x.com", "Bea", "")
	require.NoError(t, err)
	assert.True(t, created)
	// The committed profile survives the adoption failure; the next login
	// retries adoption.
	_, err = userRepo.GetByID(context.Background(), "uid-2")
	require.NoError(t, err)
}

func TestInitializeProfile_AdoptionRetriesOnNextLogin(t *testing.T) {
	existing := &models.User{ID: "uid-1", Email: "a@x.com"}
	userRepo := newFakeUserRepo(existing)
	inviteRepo := newFakeInviteRepo(
		&models.Invite{ID: "inv-late", CircleID: "c1", ToEmail: "a@x.com", Status: models.InviteStatusPending},
	)
	service := NewUserService(userRepo, inviteRepo, nil, 3)

	_, _, err := service.InitializeProfile(context.Background(), "uid-1", "a@x.com", "", "")
	require.NoError(t, err)

	adopted, err := inviteRepo.GetByID(context.Background(), "inv-late")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", adopted.ToUserID)
}

func TestGetByID_MapsMissingUser(t *testing.T) {
	service := NewUserService(newFakeUserRepo(), newFakeInviteRepo(), nil, 3)

	_, err := service.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	service := NewUserService(newFakeUserRepo(), newFakeInviteRepo(), nil, 3)

	_, err := service.Search(context.Background(), "caller", "   ")
	assert.ErrorIs(t, err, ErrEmptySearchQuery)
}

func TestSearch_ByEmailExcludesCaller(t *testing.T) {
	userRepo := newFakeUserRepo(
		&models.User{ID: "u1", Email: "ada@x.com", DisplayName: "Ada"},
		&models.User{ID: "u2", Email: "bea@x.com", DisplayName: "Bea"},
	)
	service := NewUserService(userRepo, newFakeInviteRepo(), nil, 3)

	results, err := service.Search(context.Background(), "u2", "Bea@x.com")
	require.NoError(t, err)
	assert.Empty(t, results, "searching your own email returns nothing")

	results, err = service.Search(context.Background(), "u2", "ada@x.com")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "u1", results[0].UserID)
}

func TestSearch_ByNamePrefix(t *testing.T) {
	userRepo := newFakeUserRepo(
		&models.User{ID: "u1", Email: "ada@x.com", DisplayName: "Ada"},
		&models.User{ID: "u2", Email: "adam@x.com", DisplayName: "Adam"},
		&models.User{ID: "u3", Email: "bea@x.com", DisplayName: "Bea"},
	)
	service := NewUserService(userRepo, newFakeInviteRepo(), nil, 3)

	results, err := service.Search(context.Background(), "u3", "Ada")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
