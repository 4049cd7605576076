//go:build e2e

package bizdesk_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/stretchr/testify/require"
)

// TestTenantIsolation checks that one organization cannot see or touch
// another's data, and that a foreign id looks the same as a missing one.
func TestTenantIsolation(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	alice, _ := registerFounder(t, baseURL, "Alice", "alice@example.com")
	olga, _ := registerFounder(t, baseURL, "Olga", "olga@example.com")

	client, err := olga.CreateClient(ctx, bizsdk.CreateClientRequest{Name: "Dana", Email: "dana@example.com"})
	require.NoError(t, err)
	offering, err := olga.CreateOffering(ctx, bizsdk.CreateOfferingRequest{Name: "Consultation", DurationMinutes: 45, PriceCents: 9000})
	require.NoError(t, err)
	booking, err := olga.CreateBooking(ctx, bizsdk.CreateBookingRequest{
		ClientID:   client.ID,
		OfferingID: offering.ID,
		StartsAt:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "scheduled", booking.Status)

	_, err = alice.GetClient(ctx, client.ID)
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeAccessDenied)
	_, err = alice.GetClient(ctx, "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeAccessDenied)

	_, err = alice.GetOffering(ctx, offering.ID)
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeAccessDenied)
	_, err = alice.GetBooking(ctx, booking.ID)
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeAccessDenied)

	// Booking against someone else's client is refused too.
	mine, err := alice.CreateOffering(ctx, bizsdk.CreateOfferingRequest{Name: "Cut", DurationMinutes: 30})
	require.NoError(t, err)
	_, err = alice.CreateBooking(ctx, bizsdk.CreateBookingRequest{
		ClientID:   client.ID,
		OfferingID: mine.ID,
		StartsAt:   time.Now().Add(time.Hour),
	})
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeAccessDenied)

	clients, err := alice.ListClients(ctx)
	require.NoError(t, err)
	require.Empty(t, clients)

	bookings, err := olga.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	done, err := olga.UpdateBookingStatus(ctx, booking.ID, "completed")
	require.NoError(t, err)
	require.Equal(t, "completed", done.Status)

	_, err = olga.UpdateBookingStatus(ctx, booking.ID, "cancelled")
	requireAPIError(t, err, http.StatusConflict, bizsdk.ErrorCodeInvalidStatusTransition)
}

func TestOrganizationAndSubscription(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	founder, _ := registerFounder(t, baseURL, "Alice", "alice@example.com")
	admin := joinWithInvite(t, baseURL, invite(t, founder, "ada@example.com", "admin"), "Ada", "ada@example.com")

	name, addr := "Alice's Salon", "1 George St, Sydney"
	org, err := admin.UpdateOrganization(ctx, bizsdk.UpdateOrganizationRequest{Name: &name, Address: &addr})
	require.NoError(t, err)
	require.Equal(t, name, org.Name)
	require.Equal(t, addr, org.Address)
	require.Equal(t, "alice@example.com", org.ContactEmail)

	sub, err := admin.GetSubscription(ctx)
	require.NoError(t, err)
	require.Equal(t, "free", sub.Plan)

	_, err = admin.ChangePlan(ctx, "pro")
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeInsufficientPermissions)

	sub, err = founder.ChangePlan(ctx, "pro")
	require.NoError(t, err)
	require.Equal(t, "pro", sub.Plan)
	require.True(t, sub.CurrentPeriodEnd.After(time.Now()))
}
