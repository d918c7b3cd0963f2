package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// In-memory repository fakes. Every fake honors db.ErrNotFound the way the
// Firestore repositories do, so the services' errors.Is checks behave the
// same under test.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	getErr    error
	updateErr error
	createErr error

	// circles captured from CreateWithDefaultCircles, keyed nowhere: the
	// provisioning transaction writes circles through the user repo.
	provisionedCircles []*models.Circle
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUserRepo) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.User
	for _, user := range f.users {
		if strings.HasPrefix(user.DisplayName, prefix) && len(results) < limit {
			results = append(results, user)
		}
	}
	return results, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) CreateWithDefaultCircles(ctx context.Context, user *models.User, circles []*models.Circle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	for i, circle := range circles {
		circle.ID = fmt.Sprintf("circle-%s-%d", user.ID, i)
		f.provisionedCircles = append(f.provisionedCircles, circle)
	}
	return nil
}

type fakeCircleRepo struct {
	mu      sync.Mutex
	circles map[string]*models.Circle
	nextID  int

	getErr error
}

func newFakeCircleRepo(circles ...*models.Circle) *fakeCircleRepo {
	repo := &fakeCircleRepo{circles: make(map[string]*models.Circle)}
	for _, circle := range circles {
		repo.circles[circle.ID] = circle
	}
	return repo
}

func (f *fakeCircleRepo) Create(ctx context.Context, circle *models.Circle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("circle-%d", f.nextID)
	circle.ID = id
	f.circles[id] = circle
	return id, nil
}

func (f *fakeCircleRepo) GetByID(ctx context.Context, circleID string) (*models.Circle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	circle, ok := f.circles[circleID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return circle, nil
}

func (f *fakeCircleRepo) GetByMemberID(ctx context.Context, userID string) ([]*models.Circle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.Circle
	for _, circle := range f.circles {
		if circle.HasMember(userID) {
			results = append(results, circle)
		}
	}
	return results, nil
}

func (f *fakeCircleRepo) Update(ctx context.Context, circle *models.Circle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.circles[circle.ID]; !ok {
		return db.ErrNotFound
	}
	f.circles[circle.ID] = circle
	return nil
}

func (f *fakeCircleRepo) AddMember(ctx context.Context, circleID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	circle, ok := f.circles[circleID]
	if !ok {
		return db.ErrNotFound
	}
	if !circle.HasMember(userID) {
		circle.MemberIDs = append(circle.MemberIDs, userID)
	}
	return nil
}

func (f *fakeCircleRepo) RemoveMember(ctx context.Context, circleID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	circle, ok := f.circles[circleID]
	if !ok {
		return db.ErrNotFound
	}
	kept := circle.MemberIDs[:0]
	for _, id := range circle.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	circle.MemberIDs = kept
	return nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]*models.Rating
}

func newFakeRatingRepo(ratings ...*models.Rating) *fakeRatingRepo {
	repo := &fakeRatingRepo{ratings: make(map[string]*models.Rating)}
	for _, rating := range ratings {
		repo.ratings[rating.ID] = rating
	}
	return repo
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, rating *models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[rating.ID] = rating
	return nil
}

func (f *fakeRatingRepo) GetByTuple(ctx context.Context, fromUserID, toUserID, circleID string) (*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rating, ok := f.ratings[models.RatingDocID(fromUserID, toUserID, circleID)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return rating, nil
}

func (f *fakeRatingRepo) GetByCircleID(ctx context.Context, circleID string) ([]*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.Rating
	for _, rating := range f.ratings {
		if rating.CircleID == circleID {
			results = append(results, rating)
		}
	}
	return results, nil
}

func (f *fakeRatingRepo) GetByTargetInCircle(ctx context.Context, toUserID, circleID string) ([]*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.Rating
	for _, rating := range f.ratings {
		if rating.ToUserID == toUserID && rating.CircleID == circleID {
			results = append(results, rating)
		}
	}
	return results, nil
}

func (f *fakeRatingRepo) GetByTarget(ctx context.Context, toUserID string) ([]*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.Rating
	for _, rating := range f.ratings {
		if rating.ToUserID == toUserID {
			results = append(results, rating)
		}
	}
	return results, nil
}

type fakeAttractionRepo struct {
	mu      sync.Mutex
	ratings map[string]*models.AttractionRating
}

func newFakeAttractionRepo(ratings ...*models.AttractionRating) *fakeAttractionRepo {
	repo := &fakeAttractionRepo{ratings: make(map[string]*models.AttractionRating)}
	for _, rating := range ratings {
		repo.ratings[rating.ID] = rating
	}
	return repo
}

func (f *fakeAttractionRepo) Upsert(ctx context.Context, rating *models.AttractionRating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[rating.ID] = rating
	return nil
}

func (f *fakeAttractionRepo) GetByID(ctx context.Context, ratingID string) (*models.AttractionRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rating, ok := f.ratings[ratingID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return rating, nil
}

func (f *fakeAttractionRepo) GetByTarget(ctx context.Context, toUserID string) ([]*models.AttractionRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.AttractionRating
	for _, rating := range f.ratings {
		if rating.ToUserID == toUserID {
			results = append(results, rating)
		}
	}
	return results, nil
}

func (f *fakeAttractionRepo) Update(ctx context.Context, rating *models.AttractionRating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ratings[rating.ID]; !ok {
		return db.ErrNotFound
	}
	f.ratings[rating.ID] = rating
	return nil
}

type fakeRevealRepo struct {
	mu       sync.Mutex
	requests map[string]*models.RevealRequest
	nextID   int

	countErr error
}

func newFakeRevealRepo(requests ...*models.RevealRequest) *fakeRevealRepo {
	repo := &fakeRevealRepo{requests: make(map[string]*models.RevealRequest)}
	for _, request := range requests {
		repo.requests[request.ID] = request
	}
	return repo
}

func (f *fakeRevealRepo) Create(ctx context.Context, req *models.RevealRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("reveal-%d", f.nextID)
	req.ID = id
	f.requests[id] = req
	return id, nil
}

func (f *fakeRevealRepo) GetByID(ctx context.Context, requestID string) (*models.RevealRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return request, nil
}

func (f *fakeRevealRepo) GetPendingByTarget(ctx context.Context, targetUserID string) ([]*models.RevealRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.RevealRequest
	for _, request := range f.requests {
		if request.TargetUserID == targetUserID && request.Status == models.RevealStatusPending {
			results = append(results, request)
		}
	}
	return results, nil
}

func (f *fakeRevealRepo) CountPendingByTarget(ctx context.Context, targetUserID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	pending, err := f.GetPendingByTarget(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (f *fakeRevealRepo) FindPendingByRating(ctx context.Context, ratingID string) (*models.RevealRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, request := range f.requests {
		if request.RatingID == ratingID && request.Status == models.RevealStatusPending {
			return request, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeRevealRepo) Update(ctx context.Context, req *models.RevealRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[req.ID]; !ok {
		return db.ErrNotFound
	}
	f.requests[req.ID] = req
	return nil
}

type fakeGoalRepo struct {
	mu     sync.Mutex
	goals  map[string]*models.FamilyGoal
	nextID int

	countErr error
}

func newFakeGoalRepo(goals ...*models.FamilyGoal) *fakeGoalRepo {
	repo := &fakeGoalRepo{goals: make(map[string]*models.FamilyGoal)}
	for _, goal := range goals {
		repo.goals[goal.ID] = goal
	}
	return repo
}

func (f *fakeGoalRepo) Create(ctx context.Context, goal *models.FamilyGoal) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("goal-%d", f.nextID)
	goal.ID = id
	f.goals[id] = goal
	return id, nil
}

func (f *fakeGoalRepo) GetByID(ctx context.Context, goalID string) (*models.FamilyGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal, ok := f.goals[goalID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return goal, nil
}

func (f *fakeGoalRepo) GetByParticipant(ctx context.Context, userID string) ([]*models.FamilyGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.FamilyGoal
	for _, goal := range f.goals {
		if goal.FromUserID == userID || goal.ToUserID == userID {
			results = append(results, goal)
		}
	}
	return results, nil
}

func (f *fakeGoalRepo) CountPendingByTarget(ctx context.Context, toUserID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, goal := range f.goals {
		if goal.ToUserID == toUserID && goal.Status == models.GoalStatusPending {
			count++
		}
	}
	return count, nil
}

func (f *fakeGoalRepo) Update(ctx context.Context, goal *models.FamilyGoal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[goal.ID]; !ok {
		return db.ErrNotFound
	}
	f.goals[goal.ID] = goal
	return nil
}

type fakeInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*models.Invite
	nextID  int

	listErr   error
	updateErr error
}

func newFakeInviteRepo(invites ...*models.Invite) *fakeInviteRepo {
	repo := &fakeInviteRepo{invites: make(map[string]*models.Invite)}
	for _, invite := range invites {
		repo.invites[invite.ID] = invite
	}
	return repo
}

func (f *fakeInviteRepo) Create(ctx context.Context, invite *models.Invite) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("invite-%d", f.nextID)
	invite.ID = id
	f.invites[id] = invite
	return id, nil
}

func (f *fakeInviteRepo) GetByID(ctx context.Context, inviteID string) (*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invite, ok := f.invites[inviteID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return invite, nil
}

func (f *fakeInviteRepo) GetPendingByEmail(ctx context.Context, email string) ([]*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var results []*models.Invite
	for _, invite := range f.invites {
		if invite.ToEmail == strings.ToLower(email) && invite.Status == models.InviteStatusPending {
			results = append(results, invite)
		}
	}
	return results, nil
}

func (f *fakeInviteRepo) GetPendingByToUser(ctx context.Context, userID string) ([]*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var results []*models.Invite
	for _, invite := range f.invites {
		if invite.ToUserID == userID && invite.Status == models.InviteStatusPending {
			results = append(results, invite)
		}
	}
	return results, nil
}

func (f *fakeInviteRepo) FindPendingByCircleAndEmail(ctx context.Context, circleID, email string) (*models.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, invite := range f.invites {
		if invite.CircleID == circleID && invite.ToEmail == strings.ToLower(email) && invite.Status == models.InviteStatusPending {
			return invite, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeInviteRepo) Update(ctx context.Context, invite *models.Invite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.invites[invite.ID]; !ok {
		return db.ErrNotFound
	}
	f.invites[invite.ID] = invite
	return nil
}

type fakeFeedbackRepo struct {
	mu      sync.Mutex
	created []*models.Feedback
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("feedback-%d", len(f.created)+1)
	feedback.ID = id
	f.created = append(f.created, feedback)
	return id, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, logEntry models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, logEntry)
	return nil
}

// fakeTipGenerator returns a canned tip or error.
type fakeTipGenerator struct {
	tip string
	err error

	mu    sync.Mutex
	calls int
}

func (f *fakeTipGenerator) GenerateTip(ctx context.Context, trait, partnerName string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.tip, nil
}

// fakeMailer records sent mail.
type fakeMailer struct {
	mu         sync.Mutex
	recipients []string
	err        error
}

func (f *fakeMailer) Send(recipient, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recipients = append(f.recipients, recipient)
	return nil
}

// fakeQueue records published activity events.
type fakeQueue struct {
	mu        sync.Mutex
	published [][]byte
}

func (f *fakeQueue) Publish(queueName string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, body)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

// fakeCache is a map-backed cache for the webhook replay guard.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string

	setNXErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("cache miss for key '%s'", key)
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setNXErr != nil {
		return false, f.setNXErr
	}
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}
