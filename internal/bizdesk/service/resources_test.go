package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestOrganizationUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	admin := env.member(t, alice, "ada@example.com", domain.RoleAdmin)
	staff := env.member(t, alice, "sam@example.com", domain.RoleStaff)

	_, err := env.organizations.Update(ctx, staff, domain.OrganizationPatch{Name: ptr("Hijacked")})
	require.ErrorIs(t, err, ErrInsufficientPermissions)

	env.clock.Advance(time.Hour)
	org, err := env.organizations.Update(ctx, admin, domain.OrganizationPatch{
		Name:         ptr("  Acme  "),
		ContactPhone: ptr("+61 400 000 000"),
	})
	require.NoError(t, err)
	require.Equal(t, "Acme", org.Name)
	require.Equal(t, "+61 400 000 000", org.ContactPhone)
	require.Equal(t, "alice@example.com", org.ContactEmail)
	require.Equal(t, env.clock.Now(), org.UpdatedAt)

	got, err := env.organizations.Get(ctx, staff)
	require.NoError(t, err)
	require.Equal(t, org, got)

	_, err = env.organizations.Update(ctx, admin, domain.OrganizationPatch{ContactEmail: ptr("not-an-email")})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.organizations.Update(ctx, admin, domain.OrganizationPatch{Name: ptr(" ")})
	require.ErrorIs(t, err, ErrInvalidRequest)

	unchanged, err := env.organizations.Update(ctx, admin, domain.OrganizationPatch{})
	require.NoError(t, err)
	require.Equal(t, org, unchanged)
}

func TestMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := env.founder(t, "Alice", "alice@example.com")
	staff := env.member(t, alice, "sam@example.com", domain.RoleStaff)
	env.founder(t, "Olga", "olga@example.com")

	members, err := env.organizations.Members(t.Context(), staff)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, alice.UserID(), members[0].ID)
	require.Equal(t, staff.UserID(), members[1].ID)
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	olga := env.founder(t, "Olga", "olga@example.com")

	client, err := env.catalog.CreateClient(ctx, olga, ClientInput{Name: "Olga's client"})
	require.NoError(t, err)
	offering, err := env.catalog.CreateOffering(ctx, olga, OfferingInput{Name: "Haircut", DurationMinutes: 30, PriceCents: 4500})
	require.NoError(t, err)
	booking, err := env.bookings.Create(ctx, olga, BookingInput{
		ClientID:   client.ID,
		OfferingID: offering.ID,
		StartsAt:   env.clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	t.Run("foreign rows read as access denied", func(t *testing.T) {
		_, err := env.catalog.GetClient(ctx, alice, client.ID)
		require.ErrorIs(t, err, ErrAccessDenied)

		_, err = env.catalog.GetOffering(ctx, alice, offering.ID)
		require.ErrorIs(t, err, ErrAccessDenied)

		_, err = env.bookings.Get(ctx, alice, booking.ID)
		require.ErrorIs(t, err, ErrAccessDenied)

		_, err = env.bookings.UpdateStatus(ctx, alice, booking.ID, "cancelled")
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("missing rows read the same", func(t *testing.T) {
		_, err := env.catalog.GetClient(ctx, alice, "01JZZZZZZZZZZZZZZZZZZZZZZZ")
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("malformed ids read the same", func(t *testing.T) {
		for _, id := range []string{"", "not-a-ulid", "../bookings", "01JNOTAREALCLIENT00000000"} {
			_, err := env.catalog.GetClient(ctx, alice, id)
			require.ErrorIs(t, err, ErrAccessDenied, "id %q", id)
			_, err = env.bookings.UpdateStatus(ctx, alice, id, "cancelled")
			require.ErrorIs(t, err, ErrAccessDenied, "id %q", id)
		}
	})

	t.Run("lists only show own rows", func(t *testing.T) {
		clients, err := env.catalog.ListClients(ctx, alice)
		require.NoError(t, err)
		require.Empty(t, clients)

		bookings, err := env.bookings.List(ctx, olga)
		require.NoError(t, err)
		require.Len(t, bookings, 1)
	})

	t.Run("booking with a foreign client", func(t *testing.T) {
		own, err := env.catalog.CreateOffering(ctx, alice, OfferingInput{Name: "Massage", DurationMinutes: 60})
		require.NoError(t, err)

		_, err = env.bookings.Create(ctx, alice, BookingInput{
			ClientID:   client.ID,
			OfferingID: own.ID,
			StartsAt:   env.clock.Now(),
		})
		require.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestCatalogValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	_, err := env.catalog.CreateClient(ctx, alice, ClientInput{Name: ""})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.catalog.CreateClient(ctx, alice, ClientInput{Name: "Carl", Email: "carl"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.catalog.CreateOffering(ctx, alice, OfferingInput{Name: "Nap", DurationMinutes: 0})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.catalog.CreateOffering(ctx, alice, OfferingInput{Name: "Nap", DurationMinutes: 20, PriceCents: -1})
	require.ErrorIs(t, err, ErrInvalidRequest)

	c, err := env.catalog.CreateClient(ctx, alice, ClientInput{Name: "Carl", Email: "Carl@Example.com"})
	require.NoError(t, err)
	require.Equal(t, "carl@example.com", c.Email)

	got, err := env.catalog.GetClient(ctx, alice, c.ID)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestBookingStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	staff := env.member(t, alice, "sam@example.com", domain.RoleStaff)

	client, err := env.catalog.CreateClient(ctx, staff, ClientInput{Name: "Carl"})
	require.NoError(t, err)
	offering, err := env.catalog.CreateOffering(ctx, staff, OfferingInput{Name: "Cut", DurationMinutes: 30})
	require.NoError(t, err)
	b, err := env.bookings.Create(ctx, staff, BookingInput{ClientID: client.ID, OfferingID: offering.ID, StartsAt: env.clock.Now()})
	require.NoError(t, err)
	require.Equal(t, domain.BookingScheduled, b.Status)

	_, err = env.bookings.UpdateStatus(ctx, staff, b.ID, "postponed")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.bookings.UpdateStatus(ctx, staff, b.ID, "scheduled")
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	done, err := env.bookings.UpdateStatus(ctx, staff, b.ID, "completed")
	require.NoError(t, err)
	require.Equal(t, domain.BookingCompleted, done.Status)

	_, err = env.bookings.UpdateStatus(ctx, staff, b.ID, "cancelled")
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	got, err := env.bookings.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	require.Equal(t, domain.BookingCompleted, got.Status)
}

func TestSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	admin := env.member(t, alice, "ada@example.com", domain.RoleAdmin)
	staff := env.member(t, alice, "sam@example.com", domain.RoleStaff)

	_, err := env.subscriptions.Get(ctx, staff)
	require.ErrorIs(t, err, ErrInsufficientPermissions)

	sub, err := env.subscriptions.Get(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, domain.PlanFree, sub.Plan)

	_, err = env.subscriptions.ChangePlan(ctx, admin, "pro")
	require.ErrorIs(t, err, ErrInsufficientPermissions)

	_, err = env.subscriptions.ChangePlan(ctx, alice, "enterprise")
	require.ErrorIs(t, err, ErrInvalidRequest)

	env.clock.Advance(time.Hour)
	pro, err := env.subscriptions.ChangePlan(ctx, alice, "pro")
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, pro.Plan)
	require.Equal(t, env.clock.Now().Add(domain.BillingPeriod), pro.CurrentPeriodEnd)

	got, err := env.subscriptions.Get(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, pro, got)
}

func TestUnaffiliatedPrincipal(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	p := domain.Principal{User: domain.User{ID: "lonely", Role: domain.RoleFounder}}

	_, err := env.organizations.Get(ctx, p)
	require.ErrorIs(t, err, ErrNoOrganization)

	_, err = env.catalog.ListClients(ctx, p)
	require.ErrorIs(t, err, ErrNoOrganization)

	_, err = env.catalog.GetClient(ctx, p, "anything")
	require.ErrorIs(t, err, ErrNoOrganization)
}
