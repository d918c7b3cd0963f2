package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mirrornet-backend-go/internal/db"
	"mirrornet-backend-go/internal/models"
	"mirrornet-backend-go/pkg/mailer"
	"mirrornet-backend-go/pkg/messagequeue"
)

// Custom errors for the InviteService.
var (
	ErrInviteNotFound        = errors.New("invite not found")
	ErrDuplicateInvite       = errors.New("a pending invite for this circle and email already exists")
	ErrCannotInviteSelf      = errors.New("cannot invite yourself")
	ErrAlreadyMember         = errors.New("user is already a member of this circle")
	ErrInviteAlreadyResolved = errors.New("invite has already been responded to")
)

// inviteService implements the InviteService interface.
type inviteService struct {
	inviteRepo   db.InviteRepository
	circleRepo   db.CircleRepository
	userRepo     db.UserRepository
	auditService AuditService
	mail         mailer.Mailer
	queue        messagequeue.MessageQueue
	clientURL    string
}

// NewInviteService creates a new InviteService instance. Mailer and queue may
// be nil; sending then skips the email and the activity event.
func NewInviteService(
	ir db.InviteRepository,
	cr db.CircleRepository,
	ur db.UserRepository,
	as AuditService,
	mail mailer.Mailer,
	queue messagequeue.MessageQueue,
	clientURL string,
) InviteService {
	return &inviteService{
		inviteRepo:   ir,
		circleRepo:   cr,
		userRepo:     ur,
		auditService: as,
		mail:         mail,
		queue:        queue,
		clientURL:    clientURL,
	}
}

// Send creates a pending invite from a circle owner to an email address and
// notifies the invitee best-effort.
func (s *inviteService) Send(ctx context.Context, fromUserID string, req models.SendInviteRequest) (*models.Invite, error) {
	if s.inviteRepo == nil || s.circleRepo == nil || s.userRepo == nil {
		return nil, errors.New("inviteService: component not initialized")
	}

	from, err := s.userRepo.GetByID(ctx, fromUserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, fromUserID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", fromUserID, err)
	}

	circle, err := s.circleRepo.GetByID(ctx, req.CircleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, req.CircleID)
		}
		return nil, fmt.Errorf("failed to get circle '%s': %w", req.CircleID, err)
	}
	if circle.OwnerID != fromUserID {
		return nil, fmt.Errorf("%w: user '%s' is not owner of circle '%s'", ErrForbiddenAccess, fromUserID, req.CircleID)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == strings.ToLower(from.Email) {
		return nil, ErrCannotInviteSelf
	}

	// If the invitee already has an account we can link the invite right
	// away and reject invites to existing members.
	toUserID := ""
	invitee, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if circle.HasMember(invitee.ID) {
			return nil, fmt.Errorf("%w: user '%s' in circle '%s'", ErrAlreadyMember, invitee.ID, req.CircleID)
		}
		toUserID = invitee.ID
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up invitee by email: %w", err)
	}

	if _, err := s.inviteRepo.FindPendingByCircleAndEmail(ctx, req.CircleID, email); err == nil {
		return nil, fmt.Errorf("%w: circle '%s', email '%s'", ErrDuplicateInvite, req.CircleID, email)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate invites: %w", err)
	}

	now := time.Now().UTC()
	invite := &models.Invite{
		CircleID:   req.CircleID,
		CircleName: circle.Name,
		FromUserID: fromUserID,
		FromName:   from.DisplayName,
		ToEmail:    email,
		ToUserID:   toUserID,
		Status:     models.InviteStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.sendInviteEmail(invite)
	publishActivity(s.queue, "invite.sent", fromUserID, email)

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     fromUserID,
			Action:     "INVITE_SEND",
			TargetType: "INVITE",
			TargetID:   invite.ID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"circleId": req.CircleID,
				"toEmail":  email,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for INVITE_SEND (inviteID: %s): %v\n", invite.ID, auditErr)
		}
	}

	return invite, nil
}

// sendInviteEmail delivers the invite notification. Failures are logged and
// swallowed; the invite itself is already stored.
func (s *inviteService) sendInviteEmail(invite *models.Invite) {
	if s.mail == nil {
		return
	}

	subject := fmt.Sprintf("%s invited you to their %s circle", invite.FromName, invite.CircleName)
	link := s.clientURL
	if link == "" {
		link = "the app"
	}
	body := fmt.Sprintf(
		"<html><body><p>%s invited you to join the circle <b>%s</b>.</p><p>Sign in at %s to accept or decline.</p></body></html>",
		invite.FromName, invite.CircleName, link,
	)

	if err := s.mail.Send(invite.ToEmail, subject, body); err != nil {
		fmt.Printf("Warning: failed to send invite email to '%s': %v\n", invite.ToEmail, err)
	}
}

// ListReceived returns the pending invites linked to the user's account.
// Invites sent before the account existed get linked during provisioning.
func (s *inviteService) ListReceived(ctx context.Context, userID string) ([]*models.Invite, error) {
	if s.inviteRepo == nil {
		return nil, errors.New("inviteService: inviteRepo not initialized")
	}
	invites, err := s.inviteRepo.GetPendingByToUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for user '%s': %w", userID, err)
	}
	return invites, nil
}

// Respond lets the addressee accept or decline a pending invite. Accepting
// joins the circle.
func (s *inviteService) Respond(ctx context.Context, userID, inviteID string, accept bool) (*models.Invite, error) {
	if s.inviteRepo == nil || s.circleRepo == nil {
		return nil, errors.New("inviteService: component not initialized")
	}

	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: invite with ID '%s'", ErrInviteNotFound, inviteID)
		}
		return nil, fmt.Errorf("failed to get invite '%s': %w", inviteID, err)
	}

	if invite.ToUserID != userID {
		return nil, fmt.Errorf("%w: user '%s' is not the addressee of invite '%s'", ErrForbiddenAccess, userID, inviteID)
	}
	if invite.Status != models.InviteStatusPending {
		return nil, fmt.Errorf("%w: invite '%s' is '%s'", ErrInviteAlreadyResolved, inviteID, invite.Status)
	}

	now := time.Now().UTC()
	eventType := "invite.declined"
	if accept {
		if err := s.circleRepo.AddMember(ctx, invite.CircleID, userID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: circle with ID '%s'", ErrCircleNotFound, invite.CircleID)
			}
			return nil, fmt.Errorf("failed to join circle '%s': %w", invite.CircleID, err)
		}
		invite.Status = models.InviteStatusAccepted
		eventType = "invite.accepted"
	} else {
		invite.Status = models.InviteStatusDeclined
	}
	invite.RespondedAt = &now
	invite.UpdatedAt = now

	if err := s.inviteRepo.Update(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to update invite '%s': %w", inviteID, err)
	}

	publishActivity(s.queue, eventType, userID, invite.FromUserID)

	if s.auditService != nil {
		auditLogEntry := models.AuditLog{
			UserID:     userID,
			Action:     "INVITE_RESPOND",
			TargetType: "INVITE",
			TargetID:   inviteID,
			Timestamp:  now,
			Details: map[string]interface{}{
				"status": invite.Status,
			},
		}
		if auditErr := s.auditService.CreateAuditLog(ctx, auditLogEntry); auditErr != nil {
			fmt.Printf("Warning: failed to create audit log for INVITE_RESPOND (inviteID: %s): %v\n", inviteID, auditErr)
		}
	}

	return invite, nil
}
