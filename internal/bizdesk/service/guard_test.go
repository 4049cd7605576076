package service

import (
	"testing"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	t.Parallel()

	founder, admin, staff := domain.RoleFounder, domain.RoleAdmin, domain.RoleStaff

	tests := []struct {
		op      Operation
		allowed []domain.Role
		denied  []domain.Role
	}{
		{OpOrganizationRead, []domain.Role{founder, admin, staff}, nil},
		{OpMembersRead, []domain.Role{founder, admin, staff}, nil},
		{OpOrganizationUpdate, []domain.Role{founder, admin}, []domain.Role{staff}},
		{OpInvitationIssue, []domain.Role{founder, admin}, []domain.Role{staff}},
		{OpInvitationList, []domain.Role{founder, admin}, []domain.Role{staff}},
		{OpClientWrite, []domain.Role{founder, admin, staff}, nil},
		{OpBookingWrite, []domain.Role{founder, admin, staff}, nil},
		{OpSubscriptionRead, []domain.Role{founder, admin}, []domain.Role{staff}},
		{OpSubscriptionManage, []domain.Role{founder}, []domain.Role{admin, staff}},
		{Operation("unknown:op"), nil, []domain.Role{founder, admin, staff}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for _, r := range tt.allowed {
				require.True(t, Allowed(r, tt.op), "%s should be allowed", r)
			}
			for _, r := range tt.denied {
				require.False(t, Allowed(r, tt.op), "%s should be denied", r)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	member := func(role domain.Role, org string) domain.Principal {
		return domain.Principal{User: domain.User{ID: "u1", Role: role, OrganizationID: org}}
	}

	t.Run("unaffiliated principal is rejected before its role", func(t *testing.T) {
		err := Authorize(t.Context(), member(domain.RoleFounder, ""), OpOrganizationRead)
		require.ErrorIs(t, err, ErrNoOrganization)
	})

	t.Run("role outside allow-list", func(t *testing.T) {
		err := Authorize(t.Context(), member(domain.RoleStaff, "org1"), OpOrganizationUpdate)
		require.ErrorIs(t, err, ErrInsufficientPermissions)
	})

	t.Run("role inside allow-list", func(t *testing.T) {
		require.NoError(t, Authorize(t.Context(), member(domain.RoleAdmin, "org1"), OpOrganizationUpdate))
	})
}

func TestCheckTenant(t *testing.T) {
	t.Parallel()

	p := domain.Principal{User: domain.User{ID: "u1", Role: domain.RoleStaff, OrganizationID: "org-a"}}

	require.NoError(t, CheckTenant(t.Context(), p, domain.Client{OrganizationID: "org-a"}))
	require.ErrorIs(t, CheckTenant(t.Context(), p, domain.Client{OrganizationID: "org-b"}), ErrAccessDenied)
	require.ErrorIs(t, CheckTenant(t.Context(), p, domain.Booking{}), ErrAccessDenied)
}
