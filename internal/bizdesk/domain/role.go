package domain

import "fmt"

// Role is a user's standing within their organization. The set is closed:
// only the constants below are valid.
type Role string

const (
	RoleFounder Role = "founder"
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
)

// ParseRole returns the Role named by s or an error for anything else.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleFounder, RoleAdmin, RoleStaff:
		return r, nil
	default:
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Invitable reports whether an invitation may grant r. Founders are only
// ever created by open registration.
func (r Role) Invitable() bool {
	return r == RoleAdmin || r == RoleStaff
}

func (r Role) String() string { return string(r) }
