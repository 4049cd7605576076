package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict means a conditional write matched no row because the row
	// changed underneath the caller (e.g. an invitation already consumed).
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Sub-repositories hang off it so a transaction can
// hand out the same repos bound to the transaction instead.
type Store interface {
	Organizations() Organizations
	Users() Users
	Invitations() Invitations
	Sessions() Sessions
	Clients() Clients
	Offerings() Offerings
	Bookings() Bookings
	Subscriptions() Subscriptions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil and
	// rolling back otherwise. fn must only use the repos of the Tx it is
	// given; the sqlite driver has a single connection and the outer store
	// would block until the transaction ends.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Organizations interface {
	CreateOrganization(ctx context.Context, o domain.Organization) error
	GetOrganization(ctx context.Context, id string) (domain.Organization, error)
	// UpdateOrganization overwrites the mutable fields and updated_at.
	UpdateOrganization(ctx context.Context, o domain.Organization) error
}

type Users interface {
	// CreateUser fails with ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	// GetUserByEmail expects an already normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	// ListUsersByOrganization returns members oldest first.
	ListUsersByOrganization(ctx context.Context, orgID string) ([]domain.User, error)
	UpdateUserRole(ctx context.Context, id string, role domain.Role, now time.Time) error
}

type Invitations interface {
	// CreateInvitation fails with ErrAlreadyExists on a fingerprint collision.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)
	// GetInvitationByFingerprint returns the invitation whatever its state.
	GetInvitationByFingerprint(ctx context.Context, fingerprint string) (domain.Invitation, error)
	// ListInvitationsByOrganization returns invitations newest first.
	ListInvitationsByOrganization(ctx context.Context, orgID string) ([]domain.Invitation, error)
	// ConsumeInvitation flips used for an unused invitation that has not
	// expired at now. It returns ErrConflict when no such row exists.
	ConsumeInvitation(ctx context.Context, id, usedBy string, now time.Time) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSessionByFingerprint(ctx context.Context, fingerprint string) (domain.Session, error)
	DeleteSessionByFingerprint(ctx context.Context, fingerprint string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error
	// DeleteExpiredSessions removes sessions expired at now and reports how many.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Clients, Offerings and Bookings look rows up by (organization, id) so a
// row from another tenant is simply not found.
type Clients interface {
	CreateClient(ctx context.Context, c domain.Client) error
	GetClient(ctx context.Context, orgID, id string) (domain.Client, error)
	ListClients(ctx context.Context, orgID string) ([]domain.Client, error)
}

type Offerings interface {
	CreateOffering(ctx context.Context, o domain.Offering) error
	GetOffering(ctx context.Context, orgID, id string) (domain.Offering, error)
	ListOfferings(ctx context.Context, orgID string) ([]domain.Offering, error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, b domain.Booking) error
	GetBooking(ctx context.Context, orgID, id string) (domain.Booking, error)
	ListBookings(ctx context.Context, orgID string) ([]domain.Booking, error)
	// UpdateBookingStatus moves a booking from one status to another and
	// returns ErrConflict if it was no longer in from.
	UpdateBookingStatus(ctx context.Context, orgID, id string, from, to domain.BookingStatus) error
}

type Subscriptions interface {
	CreateSubscription(ctx context.Context, s domain.Subscription) error
	GetSubscriptionByOrganization(ctx context.Context, orgID string) (domain.Subscription, error)
	UpdateSubscription(ctx context.Context, s domain.Subscription) error
}
