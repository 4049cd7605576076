// Package storetest is a conformance suite every store driver runs.
package storetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, migrated, empty store.
type Factory func(t *testing.T) store.Store

// Run exercises every repository of the store produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Organizations", func(t *testing.T) { testOrganizations(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Invitations", func(t *testing.T) { testInvitations(t, newStore(t)) })
	t.Run("ConsumeInvitationOnce", func(t *testing.T) { testConsumeInvitationOnce(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
	t.Run("TenantScopedRows", func(t *testing.T) { testTenantScopedRows(t, newStore(t)) })
	t.Run("Subscriptions", func(t *testing.T) { testSubscriptions(t, newStore(t)) })
	t.Run("WithTxRollsBack", func(t *testing.T) { testWithTxRollsBack(t, newStore(t)) })
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// SeedOrganization inserts an organization and returns it.
func SeedOrganization(t *testing.T, st store.Store, name string) domain.Organization {
	t.Helper()
	ts := now()
	org := domain.Organization{ID: idx.New().String(), Name: name, CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, st.Organizations().CreateOrganization(t.Context(), org))
	return org
}

// SeedUser inserts a user in orgID with role and returns it.
func SeedUser(t *testing.T, st store.Store, orgID, email string, role domain.Role) domain.User {
	t.Helper()
	ts := now()
	u := domain.User{
		ID:             idx.New().String(),
		Name:           email,
		Email:          email,
		PasswordHash:   "hash",
		Role:           role,
		OrganizationID: orgID,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	require.NoError(t, st.Users().CreateUser(t.Context(), u))
	return u
}

func newInvitation(orgID, invitedBy string, expiresAt time.Time) domain.Invitation {
	token, _ := cryptox.GenerateToken(cryptox.TokenSize256)
	return domain.Invitation{
		ID:               idx.New().String(),
		Email:            "bob@x.com",
		TokenFingerprint: cryptox.FingerprintToken(token),
		Role:             domain.RoleAdmin,
		OrganizationID:   orgID,
		InvitedBy:        invitedBy,
		ExpiresAt:        expiresAt,
		CreatedAt:        now(),
	}
}

func testOrganizations(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")

	got, err := st.Organizations().GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, org, got)

	got.Name = "Acme Ltd"
	got.ContactPhone = "555-0100"
	got.UpdatedAt = now().Add(time.Second)
	require.NoError(t, st.Organizations().UpdateOrganization(ctx, got))

	again, err := st.Organizations().GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, got, again)

	_, err = st.Organizations().GetOrganization(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.Organizations().UpdateOrganization(ctx, domain.Organization{ID: "missing"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUsers(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")
	alice := SeedUser(t, st, org.ID, "alice@x.com", domain.RoleFounder)
	bob := SeedUser(t, st, org.ID, "bob@x.com", domain.RoleStaff)

	got, err := st.Users().GetUserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, alice, got)

	got, err = st.Users().GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, bob, got)

	dup := alice
	dup.ID = idx.New().String()
	err = st.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	members, err := st.Users().ListUsersByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, alice.ID, members[0].ID)

	require.NoError(t, st.Users().UpdateUserRole(ctx, bob.ID, domain.RoleAdmin, now()))
	got, err = st.Users().GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	// An unaffiliated user has no organization.
	loner := SeedUser(t, st, "", "loner@x.com", domain.RoleStaff)
	got, err = st.Users().GetUserByID(ctx, loner.ID)
	require.NoError(t, err)
	require.False(t, got.Affiliated())
}

func testInvitations(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")
	founder := SeedUser(t, st, org.ID, "alice@x.com", domain.RoleFounder)

	first := newInvitation(org.ID, founder.ID, now().Add(48*time.Hour))
	first.CreatedAt = now().Add(-time.Minute)
	second := newInvitation(org.ID, founder.ID, now().Add(48*time.Hour))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, first))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, second))

	got, err := st.Invitations().GetInvitationByFingerprint(ctx, first.TokenFingerprint)
	require.NoError(t, err)
	require.Equal(t, first, got)

	got, err = st.Invitations().GetInvitationByID(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, second, got)

	collision := newInvitation(org.ID, founder.ID, now().Add(time.Hour))
	collision.TokenFingerprint = first.TokenFingerprint
	err = st.Invitations().CreateInvitation(ctx, collision)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	list, err := st.Invitations().ListInvitationsByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")

	_, err = st.Invitations().GetInvitationByFingerprint(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Consume once, then the conditional update no longer matches.
	usedAt := now()
	require.NoError(t, st.Invitations().ConsumeInvitation(ctx, first.ID, "user-1", usedAt))
	err = st.Invitations().ConsumeInvitation(ctx, first.ID, "user-2", usedAt)
	require.ErrorIs(t, err, store.ErrConflict)

	got, err = st.Invitations().GetInvitationByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.Equal(t, "user-1", got.UsedBy)
	require.NotNil(t, got.UsedAt)
	require.True(t, usedAt.Equal(*got.UsedAt))

	// Expired invitations cannot be consumed.
	expired := newInvitation(org.ID, founder.ID, now().Add(-time.Second))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, expired))
	err = st.Invitations().ConsumeInvitation(ctx, expired.ID, "user-3", now())
	require.ErrorIs(t, err, store.ErrConflict)
}

func testConsumeInvitationOnce(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")
	founder := SeedUser(t, st, org.ID, "alice@x.com", domain.RoleFounder)
	inv := newInvitation(org.ID, founder.ID, now().Add(time.Hour))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	const workers = 50
	var (
		wg        sync.WaitGroup
		wins      atomic.Int32
		conflicts atomic.Int32
		others    = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.WithTx(ctx, func(tx store.Tx) error {
				return tx.Invitations().ConsumeInvitation(ctx, inv.ID, idx.New().String(), now())
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, store.ErrConflict):
				conflicts.Add(1)
			default:
				others <- err
			}
		}()
	}
	wg.Wait()
	close(others)

	for err := range others {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, wins.Load())
	require.EqualValues(t, workers-1, conflicts.Load())
}

func testSessions(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")
	u := SeedUser(t, st, org.ID, "alice@x.com", domain.RoleFounder)

	live := domain.Session{
		ID:               idx.New().String(),
		TokenFingerprint: cryptox.FingerprintToken("live"),
		UserID:           u.ID,
		ExpiresAt:        now().Add(time.Hour),
		CreatedAt:        now(),
	}
	dead := domain.Session{
		ID:               idx.New().String(),
		TokenFingerprint: cryptox.FingerprintToken("dead"),
		UserID:           u.ID,
		ExpiresAt:        now().Add(-time.Hour),
		CreatedAt:        now().Add(-2 * time.Hour),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, live))
	require.NoError(t, st.Sessions().CreateSession(ctx, dead))

	got, err := st.Sessions().GetSessionByFingerprint(ctx, live.TokenFingerprint)
	require.NoError(t, err)
	require.Equal(t, live, got)

	n, err := st.Sessions().DeleteExpiredSessions(ctx, now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = st.Sessions().GetSessionByFingerprint(ctx, dead.TokenFingerprint)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Sessions().DeleteSessionByFingerprint(ctx, live.TokenFingerprint))
	require.NoError(t, st.Sessions().DeleteSessionByFingerprint(ctx, live.TokenFingerprint), "idempotent")
	_, err = st.Sessions().GetSessionByFingerprint(ctx, live.TokenFingerprint)
	require.ErrorIs(t, err, store.ErrNotFound)

	other := live
	other.ID = idx.New().String()
	other.TokenFingerprint = cryptox.FingerprintToken("other")
	require.NoError(t, st.Sessions().CreateSession(ctx, other))
	require.NoError(t, st.Sessions().DeleteSessionsByUser(ctx, u.ID))
	_, err = st.Sessions().GetSessionByFingerprint(ctx, other.TokenFingerprint)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testTenantScopedRows(t *testing.T, st store.Store) {
	ctx := t.Context()
	orgA := SeedOrganization(t, st, "A")
	orgB := SeedOrganization(t, st, "B")

	client := domain.Client{ID: idx.New().String(), OrganizationID: orgA.ID, Name: "Carol", Email: "carol@x.com", CreatedAt: now()}
	require.NoError(t, st.Clients().CreateClient(ctx, client))

	offering := domain.Offering{ID: idx.New().String(), OrganizationID: orgA.ID, Name: "Haircut", DurationMinutes: 30, PriceCents: 2500, CreatedAt: now()}
	require.NoError(t, st.Offerings().CreateOffering(ctx, offering))

	booking := domain.Booking{
		ID:             idx.New().String(),
		OrganizationID: orgA.ID,
		ClientID:       client.ID,
		OfferingID:     offering.ID,
		StartsAt:       now().Add(24 * time.Hour),
		Status:         domain.BookingScheduled,
		CreatedAt:      now(),
	}
	require.NoError(t, st.Bookings().CreateBooking(ctx, booking))

	gotClient, err := st.Clients().GetClient(ctx, orgA.ID, client.ID)
	require.NoError(t, err)
	require.Equal(t, client, gotClient)

	gotOffering, err := st.Offerings().GetOffering(ctx, orgA.ID, offering.ID)
	require.NoError(t, err)
	require.Equal(t, offering, gotOffering)

	gotBooking, err := st.Bookings().GetBooking(ctx, orgA.ID, booking.ID)
	require.NoError(t, err)
	require.Equal(t, booking, gotBooking)

	// The same rows are invisible from another tenant.
	_, err = st.Clients().GetClient(ctx, orgB.ID, client.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Offerings().GetOffering(ctx, orgB.ID, offering.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Bookings().GetBooking(ctx, orgB.ID, booking.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	clients, err := st.Clients().ListClients(ctx, orgB.ID)
	require.NoError(t, err)
	require.Empty(t, clients)

	clients, err = st.Clients().ListClients(ctx, orgA.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)

	offerings, err := st.Offerings().ListOfferings(ctx, orgA.ID)
	require.NoError(t, err)
	require.Len(t, offerings, 1)

	bookings, err := st.Bookings().ListBookings(ctx, orgA.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	err = st.Bookings().UpdateBookingStatus(ctx, orgB.ID, booking.ID, domain.BookingScheduled, domain.BookingCancelled)
	require.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, st.Bookings().UpdateBookingStatus(ctx, orgA.ID, booking.ID, domain.BookingScheduled, domain.BookingCompleted))
	err = st.Bookings().UpdateBookingStatus(ctx, orgA.ID, booking.ID, domain.BookingScheduled, domain.BookingCancelled)
	require.ErrorIs(t, err, store.ErrConflict)
}

func testSubscriptions(t *testing.T, st store.Store) {
	ctx := t.Context()
	org := SeedOrganization(t, st, "Acme")

	sub := domain.Subscription{
		ID:               idx.New().String(),
		OrganizationID:   org.ID,
		Plan:             domain.PlanFree,
		Status:           domain.SubscriptionActive,
		CurrentPeriodEnd: now().Add(domain.BillingPeriod),
		CreatedAt:        now(),
		UpdatedAt:        now(),
	}
	require.NoError(t, st.Subscriptions().CreateSubscription(ctx, sub))

	dup := sub
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Subscriptions().CreateSubscription(ctx, dup), store.ErrAlreadyExists)

	got, err := st.Subscriptions().GetSubscriptionByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, sub, got)

	got.Plan = domain.PlanPro
	got.UpdatedAt = now().Add(time.Second)
	require.NoError(t, st.Subscriptions().UpdateSubscription(ctx, got))

	again, err := st.Subscriptions().GetSubscriptionByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, again.Plan)
}

func testWithTxRollsBack(t *testing.T, st store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")
	orgID := idx.New().String()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		ts := now()
		if err := tx.Organizations().CreateOrganization(ctx, domain.Organization{ID: orgID, Name: "Ghost", CreatedAt: ts, UpdatedAt: ts}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Organizations().GetOrganization(ctx, orgID)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are not supported")
}
