package domain

// Principal is the authenticated caller, resolved from a session on every
// request and handed to services explicitly.
type Principal struct {
	User      User
	SessionID string
}

func (p Principal) UserID() string         { return p.User.ID }
func (p Principal) Role() Role             { return p.User.Role }
func (p Principal) OrganizationID() string { return p.User.OrganizationID }

// TenantOwned is implemented by rows that belong to one organization.
type TenantOwned interface {
	TenantID() string
}

func (c Client) TenantID() string       { return c.OrganizationID }
func (o Offering) TenantID() string     { return o.OrganizationID }
func (b Booking) TenantID() string      { return b.OrganizationID }
func (i Invitation) TenantID() string   { return i.OrganizationID }
func (s Subscription) TenantID() string { return s.OrganizationID }
