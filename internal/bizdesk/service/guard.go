package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// Operation names a guarded action.
type Operation string

const (
	OpOrganizationRead   Operation = "organization:read"
	OpOrganizationUpdate Operation = "organization:update"
	OpMembersRead        Operation = "members:read"
	OpInvitationIssue    Operation = "invitation:issue"
	OpInvitationList     Operation = "invitation:list"
	OpClientRead         Operation = "client:read"
	OpClientWrite        Operation = "client:write"
	OpOfferingRead       Operation = "offering:read"
	OpOfferingWrite      Operation = "offering:write"
	OpBookingRead        Operation = "booking:read"
	OpBookingWrite       Operation = "booking:write"
	OpSubscriptionRead   Operation = "subscription:read"
	OpSubscriptionManage Operation = "subscription:manage"
)

var (
	everyone     = []domain.Role{domain.RoleFounder, domain.RoleAdmin, domain.RoleStaff}
	managers     = []domain.Role{domain.RoleFounder, domain.RoleAdmin}
	foundersOnly = []domain.Role{domain.RoleFounder}
)

// permissions is the allow-list. An operation missing from it is denied to
// every role.
var permissions = map[Operation][]domain.Role{
	OpOrganizationRead:   everyone,
	OpOrganizationUpdate: managers,
	OpMembersRead:        everyone,
	OpInvitationIssue:    managers,
	OpInvitationList:     managers,
	OpClientRead:         everyone,
	OpClientWrite:        everyone,
	OpOfferingRead:       everyone,
	OpOfferingWrite:      everyone,
	OpBookingRead:        everyone,
	OpBookingWrite:       everyone,
	OpSubscriptionRead:   managers,
	OpSubscriptionManage: foundersOnly,
}

// Allowed reports whether role may perform op.
func Allowed(role domain.Role, op Operation) bool {
	return slices.Contains(permissions[op], role)
}

// Authorize checks that p may perform op at all. An unaffiliated principal
// fails with ErrNoOrganization before its role is looked at.
func Authorize(ctx context.Context, p domain.Principal, op Operation) error {
	log := slogx.FromContext(ctx)

	if !p.User.Affiliated() {
		log.Warn("operation denied: no organization",
			slog.String("user_id", p.UserID()),
			slog.String("operation", string(op)),
		)
		return ErrNoOrganization
	}
	if !Allowed(p.Role(), op) {
		log.Warn("operation denied: role not permitted",
			slog.String("user_id", p.UserID()),
			slog.String("role", p.Role().String()),
			slog.String("operation", string(op)),
		)
		return ErrInsufficientPermissions
	}
	return nil
}

// CheckTenant fails with ErrAccessDenied unless resource belongs to p's
// organization.
func CheckTenant(ctx context.Context, p domain.Principal, resource domain.TenantOwned) error {
	if resource.TenantID() == "" || resource.TenantID() != p.OrganizationID() {
		slogx.FromContext(ctx).Warn("cross-tenant access denied",
			slog.String("user_id", p.UserID()),
			slog.String("organization_id", p.OrganizationID()),
		)
		return ErrAccessDenied
	}
	return nil
}

// loadOwned authorizes op and then loads a tenant-scoped row. Malformed ids,
// missing rows and rows of another tenant all become ErrAccessDenied.
func loadOwned[T domain.TenantOwned](
	ctx context.Context,
	p domain.Principal,
	op Operation,
	id string,
	load func(ctx context.Context, orgID, id string) (T, error),
) (T, error) {
	var zero T
	if err := Authorize(ctx, p, op); err != nil {
		return zero, err
	}

	parsed, err := idx.Parse(id)
	if err != nil {
		slogx.FromContext(ctx).Warn("malformed resource id",
			slog.String("user_id", p.UserID()),
			slog.String("operation", string(op)),
		)
		return zero, ErrAccessDenied
	}

	v, err := load(ctx, p.OrganizationID(), parsed.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("resource not visible to principal",
				slog.String("user_id", p.UserID()),
				slog.String("operation", string(op)),
				slog.String("resource_id", id),
			)
			return zero, ErrAccessDenied
		}
		return zero, err
	}
	if err := CheckTenant(ctx, p, v); err != nil {
		return zero, err
	}
	return v, nil
}
