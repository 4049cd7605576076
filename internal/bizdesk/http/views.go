package http

import (
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
)

// Conversions from domain rows to wire types. Password hashes, token
// fingerprints and session IDs never leave this package.

func userView(u domain.User) bizsdk.User {
	return bizsdk.User{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role.String(),
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
	}
}

func organizationView(o domain.Organization) bizsdk.Organization {
	return bizsdk.Organization{
		ID:           o.ID,
		Name:         o.Name,
		ContactEmail: o.ContactEmail,
		ContactPhone: o.ContactPhone,
		Address:      o.Address,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func invitationView(i domain.Invitation, now time.Time) bizsdk.Invitation {
	return bizsdk.Invitation{
		ID:        i.ID,
		Email:     i.Email,
		Role:      i.Role.String(),
		State:     string(i.State(now)),
		InvitedBy: i.InvitedBy,
		ExpiresAt: i.ExpiresAt,
		UsedBy:    i.UsedBy,
		UsedAt:    i.UsedAt,
		CreatedAt: i.CreatedAt,
	}
}

func clientView(c domain.Client) bizsdk.Client {
	return bizsdk.Client{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
	}
}

func offeringView(o domain.Offering) bizsdk.Offering {
	return bizsdk.Offering{
		ID:              o.ID,
		OrganizationID:  o.OrganizationID,
		Name:            o.Name,
		Description:     o.Description,
		DurationMinutes: o.DurationMinutes,
		PriceCents:      o.PriceCents,
		CreatedAt:       o.CreatedAt,
	}
}

func bookingView(b domain.Booking) bizsdk.Booking {
	return bizsdk.Booking{
		ID:             b.ID,
		OrganizationID: b.OrganizationID,
		ClientID:       b.ClientID,
		OfferingID:     b.OfferingID,
		StartsAt:       b.StartsAt,
		Status:         string(b.Status),
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
	}
}

func subscriptionView(s domain.Subscription) bizsdk.Subscription {
	return bizsdk.Subscription{
		Plan:             string(s.Plan),
		Status:           string(s.Status),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		UpdatedAt:        s.UpdatedAt,
	}
}

// mapSlice converts every element of in with f. A nil input yields an
// empty, non-nil slice so lists encode as [] rather than null.
func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
