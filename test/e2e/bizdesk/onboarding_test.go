//go:build e2e

package bizdesk_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/stretchr/testify/require"
)

// TestInvitationOnboarding walks a founder inviting an admin, the admin
// joining, and the invitation becoming unusable afterwards.
func TestInvitationOnboarding(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	founder, reg := registerFounder(t, baseURL, "Alice", "alice@example.com")
	token := invite(t, founder, "bob@example.com", "admin")

	anon := newClient(t, baseURL)
	preview, err := anon.VerifyInvitation(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", preview.Email)
	require.Equal(t, "admin", preview.Role)
	require.Equal(t, reg.Organization.ID, preview.OrganizationID)

	admin := joinWithInvite(t, baseURL, token, "Bob", "bob@example.com")

	me, err := admin.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin", me.Role)
	require.Equal(t, reg.Organization.ID, me.OrganizationID)

	members, err := founder.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = anon.VerifyInvitation(ctx, token)
	requireAPIError(t, err, http.StatusBadRequest, bizsdk.ErrorCodeTokenUsed)

	_, err = newClient(t, baseURL).RegisterWithInvite(ctx, bizsdk.RegisterWithInviteRequest{
		Token:    token,
		Name:     "Mallory",
		Email:    "bob@example.com",
		Password: memberPassword,
	})
	requireAPIError(t, err, http.StatusBadRequest, bizsdk.ErrorCodeTokenUsed)

	// The admin can invite staff, the staff member cannot invite anyone.
	staffToken := invite(t, admin, "sam@example.com", "staff")
	staff := joinWithInvite(t, baseURL, staffToken, "Sam", "sam@example.com")

	_, err = staff.CreateInvitation(ctx, bizsdk.InviteRequest{Email: "eve@example.com", Role: "staff"})
	requireAPIError(t, err, http.StatusForbidden, bizsdk.ErrorCodeInsufficientPermissions)

	list, err := founder.ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, inv := range list {
		require.Equal(t, "used", inv.State)
	}
}

func TestInvitationRejections(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	founder, _ := registerFounder(t, baseURL, "Alice", "alice@example.com")
	_, err := founder.CreateInvitation(ctx, bizsdk.InviteRequest{Email: "alice@example.com", Role: "staff"})
	requireAPIError(t, err, http.StatusBadRequest, bizsdk.ErrorCodeEmailAlreadyRegistered)

	_, err = founder.CreateInvitation(ctx, bizsdk.InviteRequest{Email: "bob@example.com", Role: "founder"})
	requireAPIError(t, err, http.StatusBadRequest, bizsdk.ErrorCodeInvalidRole)

	token := invite(t, founder, "bob@example.com", "staff")

	_, err = newClient(t, baseURL).RegisterWithInvite(ctx, bizsdk.RegisterWithInviteRequest{
		Token:    token,
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: memberPassword,
	})
	requireAPIError(t, err, http.StatusBadRequest, bizsdk.ErrorCodeEmailMismatch)

	_, err = newClient(t, baseURL).VerifyInvitation(ctx, "not-a-real-token")
	requireAPIError(t, err, http.StatusNotFound, bizsdk.ErrorCodeInvalidToken)

	// The mismatch above must not have burnt the invitation.
	joinWithInvite(t, baseURL, token, "Bob", "bob@example.com")
}

func TestLoginAndLogout(t *testing.T) {
	baseURL := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	registerFounder(t, baseURL, "Alice", "alice@example.com")

	c := newClient(t, baseURL)
	_, err := c.Login(ctx, "alice@example.com", "wrong-password")
	requireAPIError(t, err, http.StatusUnauthorized, bizsdk.ErrorCodeInvalidCredentials)

	user, err := c.Login(ctx, "ALICE@example.com", founderPassword)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, c.SessionToken())

	require.NoError(t, c.Logout(ctx))
	_, err = c.Me(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, bizsdk.ErrorCodeNotAuthenticated)
}
