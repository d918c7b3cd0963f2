package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrornet-backend-go/internal/models"
)

func newGoalFixture(circle *models.Circle, users ...*models.User) (*goalFixture, GoalService, *fakeTipGenerator) {
	tips := &fakeTipGenerator{tip: "Try a weekly check-in."}
	f := &goalFixture{
		goalRepo:   newFakeGoalRepo(),
		circleRepo: newFakeCircleRepo(circle),
		userRepo:   newFakeUserRepo(users...),
	}
	service := NewGoalService(f.goalRepo, f.circleRepo, f.userRepo, nil, tips, &fakeQueue{})
	return f, service, tips
}

type goalFixture struct {
	goalRepo   *fakeGoalRepo
	circleRepo *fakeCircleRepo
	userRepo   *fakeUserRepo
}

func TestSuggestGoal_HappyPath(t *testing.T) {
	f, service, tips := newGoalFixture(
		familyCircle("fam", "alice", "bob"),
		premiumUser("alice"),
		&models.User{ID: "bob", DisplayName: "Bob"},
	)

	goal, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "bob",
		CircleID: "fam",
		Trait:    "communication",
	})
	require.NoError(t, err)

	assert.Equal(t, models.GoalStatusPending, goal.Status)
	assert.Equal(t, "communication", goal.Trait)
	assert.Equal(t, "Try a weekly check-in.", goal.Tip)
	assert.Equal(t, 1, tips.calls)

	stored, err := f.goalRepo.GetByID(context.Background(), goal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusPending, stored.Status)
}

func TestSuggestGoal_TipFailureDoesNotBlockCreation(t *testing.T) {
	f, service, tips := newGoalFixture(
		familyCircle("fam", "alice", "bob"),
		premiumUser("alice"),
		&models.User{ID: "bob"},
	)
	tips.err = errors.New("tip provider down")

	goal, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "bob",
		CircleID: "fam",
		Trait:    "patience",
	})
	require.NoError(t, err)
	assert.Empty(t, goal.Tip)

	_, err = f.goalRepo.GetByID(context.Background(), goal.ID)
	require.NoError(t, err)
}

func TestSuggestGoal_FreeUserRejected(t *testing.T) {
	_, service, _ := newGoalFixture(
		familyCircle("fam", "alice", "bob"),
		freeUser("alice"),
		&models.User{ID: "bob"},
	)

	_, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "bob", CircleID: "fam", Trait: "patience",
	})
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestSuggestGoal_OnlyFamilyCircles(t *testing.T) {
	_, service, _ := newGoalFixture(
		testCircle("friends", "alice", "alice", "bob"),
		premiumUser("alice"),
		&models.User{ID: "bob"},
	)

	_, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "bob", CircleID: "friends", Trait: "patience",
	})
	assert.ErrorIs(t, err, ErrNotFamilyCircle)
}

func TestSuggestGoal_SelfAndUnknownTrait(t *testing.T) {
	_, service, _ := newGoalFixture(
		familyCircle("fam", "alice", "bob"),
		premiumUser("alice"),
		&models.User{ID: "bob"},
	)

	_, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "alice", CircleID: "fam", Trait: "patience",
	})
	assert.ErrorIs(t, err, ErrSelfGoal)

	_, err = service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "bob", CircleID: "fam", Trait: "loyalty",
	})
	assert.ErrorIs(t, err, ErrUnknownTrait)
}

func TestSuggestGoal_TargetMustBeCircleMember(t *testing.T) {
	_, service, _ := newGoalFixture(
		familyCircle("fam", "alice", "bob"),
		premiumUser("alice"),
		&models.User{ID: "carol"},
	)

	_, err := service.SuggestGoal(context.Background(), "alice", models.SuggestGoalRequest{
		ToUserID: "carol", CircleID: "fam", Trait: "patience",
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRespondToGoal_Lifecycle(t *testing.T) {
	f, service, _ := newGoalFixture(familyCircle("fam", "alice", "bob"))
	goalID, err := f.goalRepo.Create(context.Background(), &models.FamilyGoal{
		FromUserID: "alice", ToUserID: "bob", CircleID: "fam",
		Trait: "patience", Status: models.GoalStatusPending,
	})
	require.NoError(t, err)

	// Only the recipient may respond.
	_, err = service.Respond(context.Background(), "alice", goalID, true)
	assert.ErrorIs(t, err, ErrForbiddenAccess)

	goal, err := service.Respond(context.Background(), "bob", goalID, true)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusActive, goal.Status)
	require.NotNil(t, goal.RespondedAt)

	// A resolved goal cannot be responded to again.
	_, err = service.Respond(context.Background(), "bob", goalID, false)
	assert.ErrorIs(t, err, ErrGoalAlreadyResolved)

	// Either participant may complete an active goal.
	completed, err := service.Complete(context.Background(), "alice", goalID)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = service.Complete(context.Background(), "alice", goalID)
	assert.ErrorIs(t, err, ErrGoalNotActive)
}

func TestRespondToGoal_DeclineEndsGoal(t *testing.T) {
	f, service, _ := newGoalFixture(familyCircle("fam", "alice", "bob"))
	goalID, err := f.goalRepo.Create(context.Background(), &models.FamilyGoal{
		FromUserID: "alice", ToUserID: "bob", CircleID: "fam",
		Trait: "respect", Status: models.GoalStatusPending,
	})
	require.NoError(t, err)

	goal, err := service.Respond(context.Background(), "bob", goalID, false)
	require.NoError(t, err)
	assert.Equal(t, models.GoalStatusDeclined, goal.Status)

	// Declined goals cannot be completed.
	_, err = service.Complete(context.Background(), "bob", goalID)
	assert.ErrorIs(t, err, ErrGoalNotActive)
}
