package domain

import "time"

// Invitation is a single-use grant to join an organization at a fixed role.
// Only the token fingerprint is stored; the raw token goes to the invitee.
type Invitation struct {
	ID               string
	Email            string // lower-cased
	TokenFingerprint string
	Role             Role
	OrganizationID   string
	InvitedBy        string
	ExpiresAt        time.Time
	Used             bool
	UsedBy           string // empty until redeemed
	UsedAt           *time.Time
	CreatedAt        time.Time
}

// InvitationState is derived, never stored.
type InvitationState string

const (
	InvitationPending InvitationState = "pending"
	InvitationUsed    InvitationState = "used"
	InvitationExpired InvitationState = "expired"
)

// Expired reports whether the invitation can no longer be redeemed because
// of time. Expiry is inclusive: at exactly ExpiresAt the token is dead.
func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// State reports the invitation's state at now. Expiry wins over use so an
// old token always reads as expired.
func (i Invitation) State(now time.Time) InvitationState {
	switch {
	case i.Expired(now):
		return InvitationExpired
	case i.Used:
		return InvitationUsed
	default:
		return InvitationPending
	}
}
