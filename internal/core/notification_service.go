package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
)

// notificationService implements the NotificationService interface. Each
// GetBadgeCounts call is one aggregation cycle: three independent fetches run
// concurrently and either all succeed or the whole cycle fails. Cycles are
// numbered from a process-wide counter; when a slow cycle finishes after a
// newer one has already delivered counts for the same user, the slow cycle's
// result is discarded and the fresher snapshot is returned instead.
type notificationService struct {
	inviteRepo db.InviteRepository
	revealRepo db.RevealRequestRepository
	goalRepo   db.FamilyGoalRepository

	cycle atomic.Uint64

	mu     sync.Mutex
	latest map[string]*models.BadgeCounts // userID -> last delivered counts
}

// badgeTrackerLimit caps the stale-cycle tracker. When the cap is reached an
// arbitrary entry is evicted; the evicted user merely loses stale-cycle
// protection until their next fetch, they never see wrong counts.
const badgeTrackerLimit = 10000

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(ir db.InviteRepository, rr db.RevealRequestRepository, gr db.FamilyGoalRepository) NotificationService {
	return &notificationService{
		inviteRepo: ir,
		revealRepo: rr,
		goalRepo:   gr,
		latest:     make(map[string]*models.BadgeCounts),
	}
}

// GetBadgeCounts aggregates the user's three badge counts: pending invites
// that carry a circle reference, pending reveal requests (premium users
// only; others get 0 without a fetch) and pending goal suggestions.
func (s *notificationService) GetBadgeCounts(ctx context.Context, user *models.User) (*models.BadgeCounts, error) {
	if s.inviteRepo == nil || s.revealRepo == nil || s.goalRepo == nil {
		return nil, errors.New("notificationService: component not initialized")
	}
	if user == nil {
		return nil, errors.New("notificationService: user is required")
	}

	cycleNum := s.cycle.Add(1)
	caps := ResolveCapabilities(user)

	var inviteCount, revealCount, goalCount int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		invites, err := s.inviteRepo.GetPendingByToUser(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to count pending invites: %w", err)
		}
		n := 0
		for _, invite := range invites {
			// Invites without a circle reference are malformed leftovers
			// and never counted.
			if invite.CircleID != "" {
				n++
			}
		}
		inviteCount = n
		return nil
	})

	g.Go(func() error {
		if !caps.RevealRequests {
			return nil
		}
		n, err := s.revealRepo.CountPendingByTarget(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to count pending reveal requests: %w", err)
		}
		revealCount = n
		return nil
	})

	g.Go(func() error {
		n, err := s.goalRepo.CountPendingByTarget(gctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to count pending goals: %w", err)
		}
		goalCount = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := &models.BadgeCounts{
		Invites:        inviteCount,
		RevealRequests: revealCount,
		Goals:          goalCount,
		Cycle:          cycleNum,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.latest[user.ID]; ok && prev.Cycle > cycleNum {
		// A newer cycle already delivered for this user; this result is
		// stale. Hand back the fresher snapshot.
		return prev, nil
	} else if !ok && len(s.latest) >= badgeTrackerLimit {
		for evicted := range s.latest {
			delete(s.latest, evicted)
			break
		}
	}
	s.latest[user.ID] = counts
	return counts, nil
}
