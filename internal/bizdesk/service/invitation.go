package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

const (
	// InvitationTTL is how long an invitation can be redeemed.
	InvitationTTL = 48 * time.Hour

	// DefaultMailTimeout bounds how long Issue waits on the Mailer.
	DefaultMailTimeout = 15 * time.Second

	// tokenAttempts bounds retries when a generated token's fingerprint
	// collides with an existing invitation.
	tokenAttempts = 3
)

// InvitationEmail is everything a Mailer needs to deliver an invitation.
type InvitationEmail struct {
	To               string
	OrganizationName string
	InviterName      string
	Role             domain.Role
	Link             string
	ExpiresAt        time.Time
}

// Mailer delivers invitation links.
type Mailer interface {
	SendInvitation(ctx context.Context, msg InvitationEmail) error
}

// IssuedInvitation reports both outcomes of Issue: the invitation exists
// even when delivery failed.
type IssuedInvitation struct {
	Invitation  domain.Invitation
	Token       string
	Link        string
	Delivered   bool
	DeliveryErr error
}

// InvitationPreview is what an unauthenticated holder of a token may see.
type InvitationPreview struct {
	Email            string
	Role             domain.Role
	OrganizationID   string
	OrganizationName string
	ExpiresAt        time.Time
}

// RedeemInput carries an invite registration.
type RedeemInput struct {
	Token    string
	Name     string
	Email    string
	Password string
}

// Redemption is the result of a successful Redeem.
type Redemption struct {
	User       domain.User
	Invitation domain.Invitation
	Session    IssuedSession
}

type InvitationService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Sessions *SessionService
	Mailer   Mailer
	BaseURL  string
	TTL      time.Duration
	Clock    Clock

	// MailTimeout caps delivery; zero means DefaultMailTimeout.
	MailTimeout time.Duration
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return InvitationTTL
	}
	return s.TTL
}

// Now is the time the service judges expiry against.
func (s *InvitationService) Now() time.Time { return s.Clock.now() }

// Link returns the registration URL carrying token.
func (s *InvitationService) Link(token string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/register?invite=" + url.QueryEscape(token)
}

// Issue creates an invitation into the principal's organization and mails
// the link. A delivery failure is reported on the result, not as an error.
func (s *InvitationService) Issue(ctx context.Context, p domain.Principal, email, role string) (IssuedInvitation, error) {
	log := slogx.FromContext(ctx)

	if err := Authorize(ctx, p, OpInvitationIssue); err != nil {
		return IssuedInvitation{}, err
	}

	email, err := requireEmail(email)
	if err != nil {
		return IssuedInvitation{}, err
	}

	r, err := domain.ParseRole(role)
	if err != nil || !r.Invitable() {
		log.Warn("invitation with invalid role",
			slog.String("user_id", p.UserID()),
			slog.String("role", role),
		)
		return IssuedInvitation{}, ErrInvalidRole
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return IssuedInvitation{}, ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to check invitee email", slogx.Err(err))
		return IssuedInvitation{}, err
	}

	org, err := s.Store.Organizations().GetOrganization(ctx, p.OrganizationID())
	if err != nil {
		log.Error("failed to fetch inviting organization", slogx.Err(err))
		return IssuedInvitation{}, err
	}

	now := s.Clock.now()
	inv := domain.Invitation{
		Email:          email,
		Role:           r,
		OrganizationID: org.ID,
		InvitedBy:      p.UserID(),
		ExpiresAt:      now.Add(s.ttl()),
		CreatedAt:      now,
	}

	var token string
	for attempt := 1; ; attempt++ {
		token, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return IssuedInvitation{}, err
		}
		inv.ID = idx.NewAt(now).String()
		inv.TokenFingerprint = cryptox.FingerprintToken(token)

		err = s.Store.Invitations().CreateInvitation(ctx, inv)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrAlreadyExists) || attempt >= tokenAttempts {
			log.Error("failed to create invitation", slog.Int("attempt", attempt), slogx.Err(err))
			return IssuedInvitation{}, err
		}
		log.Warn("invitation token collision, retrying", slog.Int("attempt", attempt))
	}

	out := IssuedInvitation{Invitation: inv, Token: token, Link: s.Link(token)}

	if s.Mailer == nil {
		out.DeliveryErr = errors.New("no mailer configured")
	} else {
		timeout := s.MailTimeout
		if timeout <= 0 {
			timeout = DefaultMailTimeout
		}
		mailCtx, cancel := context.WithTimeout(ctx, timeout)
		out.DeliveryErr = s.Mailer.SendInvitation(mailCtx, InvitationEmail{
			To:               email,
			OrganizationName: org.Name,
			InviterName:      p.User.Name,
			Role:             r,
			Link:             out.Link,
			ExpiresAt:        inv.ExpiresAt,
		})
		cancel()
	}
	out.Delivered = out.DeliveryErr == nil
	if !out.Delivered {
		log.Warn("invitation email not delivered",
			slog.String("invitation_id", inv.ID),
			slogx.Err(out.DeliveryErr),
		)
	}

	log.Info("invitation issued",
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", org.ID),
		slog.String("invited_by", p.UserID()),
		slog.String("role", r.String()),
		slog.Time("expires_at", inv.ExpiresAt),
		slog.Bool("delivered", out.Delivered),
	)
	return out, nil
}

// List returns the principal's organization's invitations, newest first.
func (s *InvitationService) List(ctx context.Context, p domain.Principal) ([]domain.Invitation, error) {
	if err := Authorize(ctx, p, OpInvitationList); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListInvitationsByOrganization(ctx, p.OrganizationID())
}

// lookup fetches the invitation behind token and classifies its state.
// Expiry is checked before use.
func (s *InvitationService) lookup(ctx context.Context, token string, now time.Time) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrInvalidToken
	}

	inv, err := s.Store.Invitations().GetInvitationByFingerprint(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvalidToken
		}
		return domain.Invitation{}, err
	}

	return inv, stateErr(inv, now)
}

func stateErr(inv domain.Invitation, now time.Time) error {
	switch inv.State(now) {
	case domain.InvitationExpired:
		return ErrTokenExpired
	case domain.InvitationUsed:
		return ErrTokenUsed
	default:
		return nil
	}
}

// Verify reports what a token would grant without consuming it.
func (s *InvitationService) Verify(ctx context.Context, token string) (InvitationPreview, error) {
	inv, err := s.lookup(ctx, token, s.Clock.now())
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			slogx.FromContext(ctx).Info("invitation verify rejected", slogx.Err(err))
		}
		return InvitationPreview{}, err
	}

	org, err := s.Store.Organizations().GetOrganization(ctx, inv.OrganizationID)
	if err != nil {
		return InvitationPreview{}, err
	}

	return InvitationPreview{
		Email:            inv.Email,
		Role:             inv.Role,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		ExpiresAt:        inv.ExpiresAt,
	}, nil
}

// Redeem consumes an invitation and creates the invited user and a session,
// all or nothing. Among concurrent redeemers of one token exactly one wins;
// the rest see ErrTokenUsed.
func (s *InvitationService) Redeem(ctx context.Context, in RedeemInput) (Redemption, error) {
	log := slogx.FromContext(ctx)

	name, err := requireName("name", in.Name)
	if err != nil {
		return Redemption{}, err
	}
	if strings.TrimSpace(in.Email) == "" {
		return Redemption{}, invalid("email is required")
	}
	if err := checkPassword(in.Password); err != nil {
		return Redemption{}, err
	}

	inv, err := s.lookup(ctx, in.Token, s.Clock.now())
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			log.Warn("invitation redemption rejected", slogx.Err(err))
		}
		return Redemption{}, err
	}

	if !strings.EqualFold(strings.TrimSpace(in.Email), inv.Email) {
		log.Warn("invitation redemption with mismatched email",
			slog.String("invitation_id", inv.ID),
		)
		return Redemption{}, ErrEmailMismatch
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, inv.Email)
	switch {
	case err == nil:
		// The account may be this invitation's own redemption by a
		// concurrent caller; that is reported as the token being used.
		current, err := s.Store.Invitations().GetInvitationByID(ctx, inv.ID)
		if err != nil {
			return Redemption{}, err
		}
		if err := stateErr(current, s.Clock.now()); err != nil {
			return Redemption{}, err
		}
		return Redemption{}, ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		return Redemption{}, err
	}

	// The KDF runs before the transaction so the write lock is held briefly.
	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return Redemption{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Clock.now()
	user := domain.User{
		ID:             idx.NewAt(now).String(),
		Name:           name,
		Email:          inv.Email,
		PasswordHash:   hash,
		Role:           inv.Role,
		OrganizationID: inv.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var sess IssuedSession
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().ConsumeInvitation(ctx, inv.ID, user.ID, now); err != nil {
			if !errors.Is(err, store.ErrConflict) {
				return err
			}
			// Someone else got there first, or time ran out. Re-read to
			// say which.
			current, err := tx.Invitations().GetInvitationByID(ctx, inv.ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrInvalidToken
				}
				return err
			}
			if err := stateErr(current, now); err != nil {
				return err
			}
			return ErrInvalidToken
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}

		sess, err = s.Sessions.Issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenUsed), errors.Is(err, ErrTokenExpired),
			errors.Is(err, ErrInvalidToken), errors.Is(err, ErrEmailAlreadyRegistered):
			log.Warn("invitation redemption lost", slog.String("invitation_id", inv.ID), slogx.Err(err))
		default:
			log.Error("invitation redemption failed", slog.String("invitation_id", inv.ID), slogx.Err(err))
		}
		return Redemption{}, err
	}

	inv.Used = true
	inv.UsedBy = user.ID
	inv.UsedAt = &now

	log.Info("user registered via invitation",
		slog.String("user_id", user.ID),
		slog.String("invitation_id", inv.ID),
		slog.String("organization_id", inv.OrganizationID),
		slog.String("role", inv.Role.String()),
	)
	return Redemption{User: user, Invitation: inv, Session: sess}, nil
}
