package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirrornet-backend-go/internal/models"
)

func newAttractionFixture(users ...*models.User) (*attractionFixture, AttractionService) {
	f := &attractionFixture{
		attractionRepo: newFakeAttractionRepo(),
		revealRepo:     newFakeRevealRepo(),
		userRepo:       newFakeUserRepo(users...),
		queue:          &fakeQueue{},
	}
	service := NewAttractionService(f.attractionRepo, f.revealRepo, f.userRepo, nil, f.queue, 3)
	return f, service
}

type attractionFixture struct {
	attractionRepo *fakeAttractionRepo
	revealRepo     *fakeRevealRepo
	userRepo       *fakeUserRepo
	queue          *fakeQueue
}

func TestSubmitAttractionRating_FreeUserRejected(t *testing.T) {
	_, service := newAttractionFixture(freeUser("rater"), freeUser("target"))

	_, err := service.SubmitRating(context.Background(), "rater", models.SubmitAttractionRatingRequest{
		ToUserID: "target",
		Scores:   map[string]int{"charisma": 4},
	})
	assert.ErrorIs(t, err, ErrPremiumRequired)
}

func TestSubmitAttractionRating_UpsertsAndAggregates(t *testing.T) {
	f, service := newAttractionFixture(premiumUser("rater"), freeUser("target"))

	rating, err := service.SubmitRating(context.Background(), "rater", models.SubmitAttractionRatingRequest{
		ToUserID:  "target",
		Scores:    map[string]int{"appearance": 4, "charisma": 2},
		Anonymous: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttractionRatingDocID("rater", "target"), rating.ID)
	assert.True(t, rating.Anonymous)

	target, err := f.userRepo.GetByID(context.Background(), "target")
	require.NoError(t, err)
	assert.Equal(t, 1, target.AttractionScore.Count)
	assert.InDelta(t, 3.0, target.AttractionScore.Average, 1e-9)
}

func TestListReceived_AnonymousAuthorStaysRedacted(t *testing.T) {
	f, service := newAttractionFixture(
		premiumUser("ratee"),
		&models.User{ID: "author", DisplayName: "Andy", IsPremium: true},
	)
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: models.AttractionRatingDocID("author", "ratee"),
		FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
	})

	views, err := service.ListReceived(context.Background(), "ratee")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].FromUserID)
	assert.Empty(t, views[0].FromName)
	assert.True(t, views[0].Anonymous)
}

func TestListReceived_AcceptedRevealDisclosesAuthor(t *testing.T) {
	f, service := newAttractionFixture(
		premiumUser("ratee"),
		&models.User{ID: "author", DisplayName: "Andy", IsPremium: true},
	)
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: models.AttractionRatingDocID("author", "ratee"),
		FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
		RevealStatus: models.RevealStatusAccepted,
	})

	views, err := service.ListReceived(context.Background(), "ratee")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "author", views[0].FromUserID)
	assert.Equal(t, "Andy", views[0].FromName)
}

func TestRequestReveal_SpendsToken(t *testing.T) {
	ratee := premiumUser("ratee")
	ratee.RevealTokens = 2
	ratee.RevealTokensResetAt = time.Now().UTC().AddDate(0, 1, 0)
	f, service := newAttractionFixture(ratee, premiumUser("author"))
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: models.AttractionRatingDocID("author", "ratee"),
		FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
	})

	request, err := service.RequestReveal(context.Background(), "ratee", models.CreateRevealRequest{
		RatingID: models.AttractionRatingDocID("author", "ratee"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RevealStatusPending, request.Status)
	assert.Equal(t, "author", request.TargetUserID)

	updated, err := f.userRepo.GetByID(context.Background(), "ratee")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RevealTokens)

	rating, err := f.attractionRepo.GetByID(context.Background(), request.RatingID)
	require.NoError(t, err)
	assert.Equal(t, models.RevealStatusPending, rating.RevealStatus)
}

func TestRequestReveal_NoTokensLeft(t *testing.T) {
	ratee := premiumUser("ratee")
	ratee.RevealTokens = 0
	ratee.RevealTokensResetAt = time.Now().UTC().AddDate(0, 1, 0)
	f, service := newAttractionFixture(ratee, premiumUser("author"))
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: models.AttractionRatingDocID("author", "ratee"),
		FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
	})

	_, err := service.RequestReveal(context.Background(), "ratee", models.CreateRevealRequest{
		RatingID: models.AttractionRatingDocID("author", "ratee"),
	})
	assert.ErrorIs(t, err, ErrNoRevealTokens)
}

func TestRequestReveal_LazyMonthlyReset(t *testing.T) {
	// Balance is exhausted but the reset moment has passed: the allowance
	// is replenished before the spend, leaving allowance-1.
	ratee := premiumUser("ratee")
	ratee.RevealTokens = 0
	ratee.RevealTokensResetAt = time.Now().UTC().Add(-time.Hour)
	f, service := newAttractionFixture(ratee, premiumUser("author"))
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: models.AttractionRatingDocID("author", "ratee"),
		FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
	})

	_, err := service.RequestReveal(context.Background(), "ratee", models.CreateRevealRequest{
		RatingID: models.AttractionRatingDocID("author", "ratee"),
	})
	require.NoError(t, err)

	updated, err := f.userRepo.GetByID(context.Background(), "ratee")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.RevealTokens)
	assert.True(t, updated.RevealTokensResetAt.After(time.Now().UTC()))
}

func TestRequestReveal_NotAnonymousOrAlreadyPending(t *testing.T) {
	ratee := premiumUser("ratee")
	ratee.RevealTokens = 3
	f, service := newAttractionFixture(ratee, premiumUser("author"))

	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: "public", FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 3}, Anonymous: false,
	})
	_, err := service.RequestReveal(context.Background(), "ratee", models.CreateRevealRequest{RatingID: "public"})
	assert.ErrorIs(t, err, ErrRevealNotAnonymous)

	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: "pending", FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 3}, Anonymous: true,
		RevealStatus: models.RevealStatusPending,
	})
	_, err = service.RequestReveal(context.Background(), "ratee", models.CreateRevealRequest{RatingID: "pending"})
	assert.ErrorIs(t, err, ErrRevealAlreadyRequested)
}

func TestRespondToReveal_AcceptFlipsRatingStatus(t *testing.T) {
	f, service := newAttractionFixture(premiumUser("author"), premiumUser("ratee"))
	f.attractionRepo.Upsert(context.Background(), &models.AttractionRating{
		ID: "r1", FromUserID: "author", ToUserID: "ratee",
		Scores: map[string]int{"style": 5}, Anonymous: true,
		RevealStatus: models.RevealStatusPending,
	})
	requestID, err := f.revealRepo.Create(context.Background(), &models.RevealRequest{
		RatingID: "r1", RequesterID: "ratee", TargetUserID: "author",
		Status: models.RevealStatusPending,
	})
	require.NoError(t, err)

	request, err := service.RespondToReveal(context.Background(), "author", requestID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RevealStatusAccepted, request.Status)
	require.NotNil(t, request.RespondedAt)

	rating, err := f.attractionRepo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.RevealStatusAccepted, rating.RevealStatus)
}

func TestRespondToReveal_OnlyTargetMayRespondOnce(t *testing.T) {
	f, service := newAttractionFixture(premiumUser("author"), premiumUser("ratee"))
	requestID, err := f.revealRepo.Create(context.Background(), &models.RevealRequest{
		RatingID: "r1", RequesterID: "ratee", TargetUserID: "author",
		Status: models.RevealStatusPending,
	})
	require.NoError(t, err)

	_, err = service.RespondToReveal(context.Background(), "ratee", requestID, true)
	assert.ErrorIs(t, err, ErrForbiddenAccess)

	resolved := &models.RevealRequest{
		ID: requestID, RatingID: "r1", RequesterID: "ratee", TargetUserID: "author",
		Status: models.RevealStatusDeclined,
	}
	require.NoError(t, f.revealRepo.Update(context.Background(), resolved))

	_, err = service.RespondToReveal(context.Background(), "author", requestID, true)
	assert.ErrorIs(t, err, ErrRevealAlreadyResolved)
}
