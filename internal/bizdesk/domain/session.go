package domain

import "time"

// Session is a server-side login. The cookie carries the raw token; the row
// keeps its fingerprint and the user ID, nothing else.
type Session struct {
	ID               string
	TokenFingerprint string
	UserID           string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
