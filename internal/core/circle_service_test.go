package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrornet-backend-go/internal/models"
)

func testCircle(id, ownerID string, memberIDs ...string) *models.Circle {
	return &models.Circle{
		ID:        id,
		Name:      "Friends",
		Type:      models.CircleTypeFriends,
		OwnerID:   ownerID,
		MemberIDs: memberIDs,
	}
}

func TestCreateCircle_RejectsUnknownType(t *testing.T) {
	service := NewCircleService(newFakeCircleRepo(), newFakeUserRepo(), newFakeRatingRepo(), nil)

	_, err := service.Create(context.Background(), "owner", models.CreateCircleRequest{Name: "X", Type: "enemies"})
	assert.ErrorIs(t, err, ErrInvalidCircleType)
}

func TestCreateCircle_OwnerIsSoleMemberWithZeroedTraits(t *testing.T) {
	service := NewCircleService(newFakeCircleRepo(), newFakeUserRepo(), newFakeRatingRepo(), nil)

	circle, err := service.Create(context.Background(), "owner", models.CreateCircleRequest{Name: "Crew", Type: models.CircleTypeWork})
	require.NoError(t, err)

	assert.NotEmpty(t, circle.ID)
	assert.Equal(t, []string{"owner"}, circle.MemberIDs)
	for _, trait := range models.TraitsByCircleType[models.CircleTypeWork] {
		aggregate, ok := circle.TraitScores[trait]
		require.True(t, ok, "missing trait %s", trait)
		assert.Zero(t, aggregate.Count)
	}
}

func TestGetDetail_NonMemberDenied(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1"))
	service := NewCircleService(circleRepo, newFakeUserRepo(), newFakeRatingRepo(), nil)

	_, err := service.GetDetail(context.Background(), "outsider", "c1")
	assert.ErrorIs(t, err, ErrNotCircleMember)
}

func TestGetDetail_MemberFlags(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1", "m2"))
	userRepo := newFakeUserRepo(
		&models.User{ID: "owner", DisplayName: "Olga"},
		&models.User{ID: "m1", DisplayName: "Mia", IsPremium: true},
		&models.User{ID: "m2", DisplayName: "Mo"},
	)
	// The owner has already rated m1 this cycle, but not m2.
	ratingRepo := newFakeRatingRepo(&models.Rating{
		ID:         models.RatingDocID("owner", "m1", "c1"),
		FromUserID: "owner", ToUserID: "m1", CircleID: "c1",
	})
	service := NewCircleService(circleRepo, userRepo, ratingRepo, nil)

	detail, err := service.GetDetail(context.Background(), "owner", "c1")
	require.NoError(t, err)
	require.Len(t, detail.Members, 3)

	byID := make(map[string]models.CircleMember)
	for _, member := range detail.Members {
		byID[member.UserID] = member
	}

	assert.False(t, byID["owner"].CanRemove, "owner can never be removed")
	assert.False(t, byID["owner"].RatedByMe, "self is never rated")

	assert.True(t, byID["m1"].CanRemove)
	assert.True(t, byID["m1"].RatedByMe)
	assert.True(t, byID["m1"].IsPremium)

	assert.True(t, byID["m2"].CanRemove)
	assert.False(t, byID["m2"].RatedByMe)
}

func TestGetDetail_NonOwnerCannotRemoveAnyone(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1", "m2"))
	userRepo := newFakeUserRepo(
		&models.User{ID: "owner"}, &models.User{ID: "m1"}, &models.User{ID: "m2"},
	)
	service := NewCircleService(circleRepo, userRepo, newFakeRatingRepo(), nil)

	detail, err := service.GetDetail(context.Background(), "m1", "c1")
	require.NoError(t, err)
	for _, member := range detail.Members {
		assert.False(t, member.CanRemove)
	}
}

func TestRemoveMember_OwnerOnly(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1", "m2"))
	service := NewCircleService(circleRepo, newFakeUserRepo(), newFakeRatingRepo(), nil)

	err := service.RemoveMember(context.Background(), "m1", "c1", "m2")
	assert.ErrorIs(t, err, ErrForbiddenAccess)

	circle, getErr := circleRepo.GetByID(context.Background(), "c1")
	require.NoError(t, getErr)
	assert.True(t, circle.HasMember("m2"), "denied removal must not mutate membership")
}

func TestRemoveMember_MemberAbsentAfterRemoval(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1", "m2"))
	auditRepo := &fakeAuditRepo{}
	service := NewCircleService(circleRepo, newFakeUserRepo(), newFakeRatingRepo(), NewAuditService(auditRepo))

	err := service.RemoveMember(context.Background(), "owner", "c1", "m1")
	require.NoError(t, err)

	circle, err := circleRepo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, circle.HasMember("m1"))
	assert.True(t, circle.HasMember("m2"))

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, "CIRCLE_MEMBER_REMOVE", auditRepo.entries[0].Action)
}

func TestRemoveMember_OwnerCannotBeRemoved(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner", "m1"))
	service := NewCircleService(circleRepo, newFakeUserRepo(), newFakeRatingRepo(), nil)

	err := service.RemoveMember(context.Background(), "owner", "c1", "owner")
	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
}

func TestRemoveMember_UnknownMember(t *testing.T) {
	circleRepo := newFakeCircleRepo(testCircle("c1", "owner", "owner"))
	service := NewCircleService(circleRepo, newFakeUserRepo(), newFakeRatingRepo(), nil)

	err := service.RemoveMember(context.Background(), "owner", "c1", "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRemoveMember_UnknownCircle(t *testing.T) {
	service := NewCircleService(newFakeCircleRepo(), newFakeUserRepo(), newFakeRatingRepo(), nil)

	err := service.RemoveMember(context.Background(), "owner", "ghost", "m1")
	assert.ErrorIs(t, err, ErrCircleNotFound)
}
