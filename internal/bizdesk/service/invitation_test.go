package service

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/stretchr/testify/require"
)

func TestInvitationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	issued, err := env.invitations.Issue(ctx, alice, "Bob@X.com", "admin")
	require.NoError(t, err)
	require.True(t, issued.Delivered)
	require.NoError(t, issued.DeliveryErr)
	require.Len(t, issued.Token, 43)
	require.Equal(t, "bob@x.com", issued.Invitation.Email)
	require.Equal(t, domain.RoleAdmin, issued.Invitation.Role)
	require.Equal(t, env.clock.Now().Add(InvitationTTL), issued.Invitation.ExpiresAt)
	require.NotEqual(t, issued.Token, issued.Invitation.TokenFingerprint)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "bob@x.com", sent[0].To)
	require.Equal(t, "Alice", sent[0].InviterName)
	require.Equal(t, "Alice's organization", sent[0].OrganizationName)
	require.Equal(t, issued.Link, sent[0].Link)

	link, err := url.Parse(issued.Link)
	require.NoError(t, err)
	require.Equal(t, "/register", link.Path)
	require.Equal(t, issued.Token, link.Query().Get("invite"))

	preview, err := env.invitations.Verify(ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", preview.Email)
	require.Equal(t, domain.RoleAdmin, preview.Role)
	require.Equal(t, alice.OrganizationID(), preview.OrganizationID)
	require.Equal(t, "Alice's organization", preview.OrganizationName)

	red, err := env.invitations.Redeem(ctx, RedeemInput{
		Token:    issued.Token,
		Name:     "Bob",
		Email:    "BOB@x.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", red.User.Email)
	require.Equal(t, domain.RoleAdmin, red.User.Role)
	require.Equal(t, alice.OrganizationID(), red.User.OrganizationID)
	require.True(t, red.Invitation.Used)
	require.Equal(t, red.User.ID, red.Invitation.UsedBy)

	bob := env.resolve(t, red.Session.Token)
	require.Equal(t, red.User.ID, bob.UserID())

	stored, err := env.store.Invitations().GetInvitationByID(ctx, issued.Invitation.ID)
	require.NoError(t, err)
	require.True(t, stored.Used)
	require.Equal(t, red.User.ID, stored.UsedBy)
	require.NotNil(t, stored.UsedAt)

	_, err = env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: testPassword})
	require.ErrorIs(t, err, ErrTokenUsed)

	_, err = env.invitations.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, ErrTokenUsed)
}

func TestIssueInvitationRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	staff := env.member(t, alice, "sam@example.com", domain.RoleStaff)
	admin := env.member(t, alice, "ada@example.com", domain.RoleAdmin)

	tests := []struct {
		name  string
		p     domain.Principal
		email string
		role  string
		want  error
	}{
		{"staff cannot invite", staff, "new@example.com", "staff", ErrInsufficientPermissions},
		{"founder role is not invitable", alice, "new@example.com", "founder", ErrInvalidRole},
		{"unknown role", alice, "new@example.com", "owner", ErrInvalidRole},
		{"existing user", alice, "SAM@example.com", "staff", ErrEmailAlreadyRegistered},
		{"bad email", alice, "nope", "staff", ErrInvalidRequest},
		{"unaffiliated", domain.Principal{User: domain.User{ID: "x", Role: domain.RoleFounder}}, "new@example.com", "staff", ErrNoOrganization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invitations.Issue(ctx, tt.p, tt.email, tt.role)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("admin can invite staff", func(t *testing.T) {
		issued, err := env.invitations.Issue(ctx, admin, "new@example.com", "staff")
		require.NoError(t, err)
		require.Equal(t, admin.UserID(), issued.Invitation.InvitedBy)
	})
}

func TestIssueSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")
	env.mailer.err = errMailDown

	issued, err := env.invitations.Issue(ctx, alice, "bob@x.com", "staff")
	require.NoError(t, err)
	require.False(t, issued.Delivered)
	require.ErrorIs(t, issued.DeliveryErr, errMailDown)
	require.NotEmpty(t, issued.Token)

	_, err = env.store.Invitations().GetInvitationByID(ctx, issued.Invitation.ID)
	require.NoError(t, err)

	_, err = env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: testPassword})
	require.NoError(t, err)
}

// stuckMailer never finishes on its own.
type stuckMailer struct{}

func (stuckMailer) SendInvitation(ctx context.Context, _ InvitationEmail) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestIssueBoundsSlowMailer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.founder(t, "Alice", "alice@example.com")
	env.invitations.Mailer = stuckMailer{}
	env.invitations.MailTimeout = 100 * time.Millisecond

	start := time.Now()
	issued, err := env.invitations.Issue(t.Context(), alice, "bob@x.com", "staff")
	require.NoError(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
	require.False(t, issued.Delivered)
	require.ErrorIs(t, issued.DeliveryErr, context.DeadlineExceeded)
}

func TestIssueWithoutMailer(t *testing.T) {
	env := newTestEnv(t)
	alice := env.founder(t, "Alice", "alice@example.com")
	env.invitations.Mailer = nil

	issued, err := env.invitations.Issue(t.Context(), alice, "bob@x.com", "staff")
	require.NoError(t, err)
	require.False(t, issued.Delivered)
	require.Error(t, issued.DeliveryErr)
}

func TestInvitationExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	issued, err := env.invitations.Issue(ctx, alice, "bob@x.com", "staff")
	require.NoError(t, err)

	env.clock.Advance(InvitationTTL - time.Millisecond)
	_, err = env.invitations.Verify(ctx, issued.Token)
	require.NoError(t, err)

	env.clock.Advance(time.Millisecond)
	_, err = env.invitations.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: testPassword})
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = env.store.Users().GetUserByEmail(ctx, "bob@x.com")
	require.Error(t, err)
}

func TestUsedThenExpiredReadsExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	issued, err := env.invitations.Issue(ctx, alice, "bob@x.com", "staff")
	require.NoError(t, err)
	_, err = env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: testPassword})
	require.NoError(t, err)

	env.clock.Advance(InvitationTTL)
	_, err = env.invitations.Verify(ctx, issued.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRedeemRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	issued, err := env.invitations.Issue(ctx, alice, "bob@x.com", "staff")
	require.NoError(t, err)

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.invitations.Redeem(ctx, RedeemInput{Token: "nope", Name: "Bob", Email: "bob@x.com", Password: testPassword})
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = env.invitations.Verify(ctx, "nope")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("email mismatch leaves the invitation unused", func(t *testing.T) {
		_, err := env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Eve", Email: "eve@x.com", Password: testPassword})
		require.ErrorIs(t, err, ErrEmailMismatch)

		inv, err := env.store.Invitations().GetInvitationByID(ctx, issued.Invitation.ID)
		require.NoError(t, err)
		require.False(t, inv.Used)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: "short"})
		require.ErrorIs(t, err, ErrInvalidRequest)

		_, err = env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Email: "bob@x.com", Password: testPassword})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("invitee registered elsewhere in the meantime", func(t *testing.T) {
		env.founder(t, "Bob", "bob@x.com")

		_, err := env.invitations.Redeem(ctx, RedeemInput{Token: issued.Token, Name: "Bob", Email: "bob@x.com", Password: testPassword})
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

		inv, err := env.store.Invitations().GetInvitationByID(ctx, issued.Invitation.ID)
		require.NoError(t, err)
		require.False(t, inv.Used)
	})
}

func TestConcurrentRedemptionHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	issued, err := env.invitations.Issue(ctx, alice, "bob@x.com", "staff")
	require.NoError(t, err)

	const n = 100
	errs := make([]error, n)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = env.invitations.Redeem(ctx, RedeemInput{
				Token:    issued.Token,
				Name:     "Bob",
				Email:    "bob@x.com",
				Password: testPassword,
			})
		}()
	}
	close(start)
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, ErrTokenUsed)
	}
	require.Equal(t, 1, wins)

	members, err := env.organizations.Members(ctx, alice)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestListInvitationsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()
	alice := env.founder(t, "Alice", "alice@example.com")

	first, err := env.invitations.Issue(ctx, alice, "one@x.com", "staff")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.invitations.Issue(ctx, alice, "two@x.com", "admin")
	require.NoError(t, err)

	other := env.founder(t, "Olga", "olga@example.com")
	_, err = env.invitations.Issue(ctx, other, "three@x.com", "staff")
	require.NoError(t, err)

	list, err := env.invitations.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.Invitation.ID, list[0].ID)
	require.Equal(t, first.Invitation.ID, list[1].ID)
}
