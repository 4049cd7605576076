package domain

import (
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID             string
	Name           string
	Email          string // lower-cased
	PasswordHash   string // scrypt, see cryptox.Hasher
	Role           Role
	OrganizationID string // empty for an unaffiliated user
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Affiliated reports whether the user belongs to an organization. A role
// means nothing without one.
func (u User) Affiliated() bool {
	return u.OrganizationID != ""
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s is a bare address ("a@b.c", no display name).
func ValidEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	_, host, ok := strings.Cut(s, "@")
	return ok && host != ""
}
