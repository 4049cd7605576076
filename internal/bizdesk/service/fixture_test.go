package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store/drivers/sqlite"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.Params{N: 1 << 10, R: 8, P: 1, KeyLen: 64, SaltLen: 16}

const testPassword = "correct horse battery"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []InvitationEmail
	err  error
}

func (m *recordingMailer) SendInvitation(_ context.Context, msg InvitationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) Sent() []InvitationEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InvitationEmail(nil), m.sent...)
}

type testEnv struct {
	store  store.Store
	clock  *fakeClock
	mailer *recordingMailer

	sessions      *SessionService
	invitations   *InvitationService
	registration  *RegistrationService
	organizations *OrganizationService
	catalog       *CatalogService
	bookings      *BookingService
	subscriptions *SubscriptionService
	housekeeping  *HousekeepingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "bizdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	hasher := cryptox.NewHasher(testParams, "", 0)
	mailer := &recordingMailer{}

	sessions := &SessionService{Store: st, Hasher: hasher, Clock: clock.Now}
	invitations := &InvitationService{
		Store:    st,
		Hasher:   hasher,
		Sessions: sessions,
		Mailer:   mailer,
		BaseURL:  "https://app.bizdesk.test",
		Clock:    clock.Now,
	}

	registration := &RegistrationService{
		Store:       st,
		Hasher:      hasher,
		Sessions:    sessions,
		Invitations: invitations,
		Clock:       clock.Now,
	}

	hk := NewHousekeepingService(st, nil, time.Hour)
	hk.Clock = clock.Now

	return &testEnv{
		store:         st,
		clock:         clock,
		mailer:        mailer,
		sessions:      sessions,
		invitations:   invitations,
		registration:  registration,
		organizations: &OrganizationService{Store: st, Clock: clock.Now},
		catalog:       &CatalogService{Store: st, Clock: clock.Now},
		bookings:      &BookingService{Store: st, Clock: clock.Now},
		subscriptions: &SubscriptionService{Store: st, Clock: clock.Now},
		housekeeping:  hk,
	}
}

// founder registers a new organization and returns its founder principal.
func (e *testEnv) founder(t *testing.T, name, email string) domain.Principal {
	t.Helper()

	reg, err := e.registration.Register(t.Context(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return e.resolve(t, reg.Session.Token)
}

func (e *testEnv) resolve(t *testing.T, token string) domain.Principal {
	t.Helper()

	p, err := e.sessions.Resolve(t.Context(), token)
	require.NoError(t, err)
	return p
}

// member invites email at role into p's organization and redeems it.
func (e *testEnv) member(t *testing.T, p domain.Principal, email string, role domain.Role) domain.Principal {
	t.Helper()

	issued, err := e.invitations.Issue(t.Context(), p, email, role.String())
	require.NoError(t, err)

	red, err := e.invitations.Redeem(t.Context(), RedeemInput{
		Token:    issued.Token,
		Name:     email,
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return e.resolve(t, red.Session.Token)
}

var errMailDown = errors.New("smtp: connection refused")
