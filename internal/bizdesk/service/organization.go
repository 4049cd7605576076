package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// OrganizationService exposes the caller's own organization and its team.
type OrganizationService struct {
	Store store.Store
	Clock Clock
}

func (s *OrganizationService) Get(ctx context.Context, p domain.Principal) (domain.Organization, error) {
	if err := Authorize(ctx, p, OpOrganizationRead); err != nil {
		return domain.Organization{}, err
	}
	return s.Store.Organizations().GetOrganization(ctx, p.OrganizationID())
}

// Update applies patch to the caller's organization. An empty patch is a
// no-op that returns the current row.
func (s *OrganizationService) Update(ctx context.Context, p domain.Principal, patch domain.OrganizationPatch) (domain.Organization, error) {
	if err := Authorize(ctx, p, OpOrganizationUpdate); err != nil {
		return domain.Organization{}, err
	}

	if err := cleanPatch(&patch); err != nil {
		return domain.Organization{}, err
	}

	var out domain.Organization
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		org, err := tx.Organizations().GetOrganization(ctx, p.OrganizationID())
		if err != nil {
			return err
		}
		if patch.Empty() {
			out = org
			return nil
		}
		out = patch.Apply(org)
		out.UpdatedAt = s.Clock.now()
		return tx.Organizations().UpdateOrganization(ctx, out)
	})
	if err != nil {
		return domain.Organization{}, err
	}

	slogx.FromContext(ctx).Info("organization updated",
		slog.String("organization_id", out.ID),
		slog.String("user_id", p.UserID()),
	)
	return out, nil
}

func cleanPatch(p *domain.OrganizationPatch) error {
	if p.Name != nil {
		v, err := requireName("name", *p.Name)
		if err != nil {
			return err
		}
		p.Name = &v
	}
	if p.ContactEmail != nil {
		v, err := optionalEmail("contact_email", *p.ContactEmail)
		if err != nil {
			return err
		}
		p.ContactEmail = &v
	}
	if p.ContactPhone != nil {
		v, err := optionalText("contact_phone", *p.ContactPhone)
		if err != nil {
			return err
		}
		p.ContactPhone = &v
	}
	if p.Address != nil {
		v, err := optionalText("address", *p.Address)
		if err != nil {
			return err
		}
		p.Address = &v
	}
	return nil
}

// Members lists the users of the caller's organization, oldest first.
func (s *OrganizationService) Members(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	if err := Authorize(ctx, p, OpMembersRead); err != nil {
		return nil, err
	}
	return s.Store.Users().ListUsersByOrganization(ctx, p.OrganizationID())
}
