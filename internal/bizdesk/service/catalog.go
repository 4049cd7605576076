package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

const maxDurationMinutes = 24 * 60

type ClientInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type OfferingInput struct {
	Name            string
	Description     string
	DurationMinutes int
	PriceCents      int64
}

// CatalogService manages an organization's clients and offerings.
type CatalogService struct {
	Store store.Store
	Clock Clock
}

func (s *CatalogService) CreateClient(ctx context.Context, p domain.Principal, in ClientInput) (domain.Client, error) {
	if err := Authorize(ctx, p, OpClientWrite); err != nil {
		return domain.Client{}, err
	}

	name, err := requireName("name", in.Name)
	if err != nil {
		return domain.Client{}, err
	}
	email, err := optionalEmail("email", in.Email)
	if err != nil {
		return domain.Client{}, err
	}
	phone, err := optionalText("phone", in.Phone)
	if err != nil {
		return domain.Client{}, err
	}
	notes, err := optionalText("notes", in.Notes)
	if err != nil {
		return domain.Client{}, err
	}

	now := s.Clock.now()
	c := domain.Client{
		ID:             idx.NewAt(now).String(),
		OrganizationID: p.OrganizationID(),
		Name:           name,
		Email:          email,
		Phone:          phone,
		Notes:          notes,
		CreatedAt:      now,
	}
	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		slogx.FromContext(ctx).Error("failed to create client", slogx.Err(err))
		return domain.Client{}, err
	}

	slogx.FromContext(ctx).Info("client created",
		slog.String("client_id", c.ID),
		slog.String("organization_id", c.OrganizationID),
	)
	return c, nil
}

func (s *CatalogService) GetClient(ctx context.Context, p domain.Principal, id string) (domain.Client, error) {
	return loadOwned(ctx, p, OpClientRead, id, s.Store.Clients().GetClient)
}

func (s *CatalogService) ListClients(ctx context.Context, p domain.Principal) ([]domain.Client, error) {
	if err := Authorize(ctx, p, OpClientRead); err != nil {
		return nil, err
	}
	return s.Store.Clients().ListClients(ctx, p.OrganizationID())
}

func (s *CatalogService) CreateOffering(ctx context.Context, p domain.Principal, in OfferingInput) (domain.Offering, error) {
	if err := Authorize(ctx, p, OpOfferingWrite); err != nil {
		return domain.Offering{}, err
	}

	name, err := requireName("name", in.Name)
	if err != nil {
		return domain.Offering{}, err
	}
	desc, err := optionalText("description", in.Description)
	if err != nil {
		return domain.Offering{}, err
	}
	if in.DurationMinutes <= 0 || in.DurationMinutes > maxDurationMinutes {
		return domain.Offering{}, invalid("duration_minutes must be between 1 and %d", maxDurationMinutes)
	}
	if in.PriceCents < 0 {
		return domain.Offering{}, invalid("price_cents must not be negative")
	}

	now := s.Clock.now()
	o := domain.Offering{
		ID:              idx.NewAt(now).String(),
		OrganizationID:  p.OrganizationID(),
		Name:            name,
		Description:     desc,
		DurationMinutes: in.DurationMinutes,
		PriceCents:      in.PriceCents,
		CreatedAt:       now,
	}
	if err := s.Store.Offerings().CreateOffering(ctx, o); err != nil {
		slogx.FromContext(ctx).Error("failed to create offering", slogx.Err(err))
		return domain.Offering{}, err
	}

	slogx.FromContext(ctx).Info("offering created",
		slog.String("offering_id", o.ID),
		slog.String("organization_id", o.OrganizationID),
	)
	return o, nil
}

func (s *CatalogService) GetOffering(ctx context.Context, p domain.Principal, id string) (domain.Offering, error) {
	return loadOwned(ctx, p, OpOfferingRead, id, s.Store.Offerings().GetOffering)
}

func (s *CatalogService) ListOfferings(ctx context.Context, p domain.Principal) ([]domain.Offering, error) {
	if err := Authorize(ctx, p, OpOfferingRead); err != nil {
		return nil, err
	}
	return s.Store.Offerings().ListOfferings(ctx, p.OrganizationID())
}
