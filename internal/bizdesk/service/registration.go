package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	OrganizationName string // optional
}

type Registration struct {
	User         domain.User
	Organization domain.Organization
	Session      IssuedSession
}

// RegistrationService onboards users. Open registration always founds a new
// organization; joining an existing one needs an invitation.
type RegistrationService struct {
	Store       store.Store
	Hasher      *cryptox.Hasher
	Sessions    *SessionService
	Invitations *InvitationService
	Clock       Clock
}

// Register creates an organization, its founder, a free subscription and a
// session in one transaction.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	log := slogx.FromContext(ctx)

	name, err := requireName("name", in.Name)
	if err != nil {
		return Registration{}, err
	}
	email, err := requireEmail(in.Email)
	if err != nil {
		return Registration{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return Registration{}, err
	}

	orgName := in.OrganizationName
	if orgName == "" {
		orgName = defaultOrganizationName(name)
	}
	if orgName, err = requireName("organization_name", orgName); err != nil {
		return Registration{}, err
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info("registration with existing email")
		return Registration{}, ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to check email", slogx.Err(err))
		return Registration{}, err
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return Registration{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.Clock.now()
	org := domain.Organization{
		ID:           idx.NewAt(now).String(),
		Name:         orgName,
		ContactEmail: email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user := domain.User{
		ID:             idx.NewAt(now).String(),
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           domain.RoleFounder,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	sub := domain.Subscription{
		ID:               idx.NewAt(now).String(),
		OrganizationID:   org.ID,
		Plan:             domain.PlanFree,
		Status:           domain.SubscriptionActive,
		CurrentPeriodEnd: now.Add(domain.BillingPeriod),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var sess IssuedSession
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, org); err != nil {
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}
		if err := tx.Subscriptions().CreateSubscription(ctx, sub); err != nil {
			return err
		}
		sess, err = s.Sessions.Issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			log.Info("registration lost email race")
		} else {
			log.Error("registration failed", slogx.Err(err))
		}
		return Registration{}, err
	}

	log.Info("organization registered",
		slog.String("user_id", user.ID),
		slog.String("organization_id", org.ID),
	)
	return Registration{User: user, Organization: org, Session: sess}, nil
}

// RegisterWithInvite joins an existing organization through an invitation.
func (s *RegistrationService) RegisterWithInvite(ctx context.Context, in RedeemInput) (Redemption, error) {
	return s.Invitations.Redeem(ctx, in)
}
