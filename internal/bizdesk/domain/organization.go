package domain

import "time"

// Organization is the tenant. Everything below it is scoped by its ID.
type Organization struct {
	ID           string
	Name         string
	ContactEmail string
	ContactPhone string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrganizationPatch carries optional updates; nil fields are left unchanged.
type OrganizationPatch struct {
	Name         *string
	ContactEmail *string
	ContactPhone *string
	Address      *string
}

func (p OrganizationPatch) Empty() bool {
	return p.Name == nil && p.ContactEmail == nil && p.ContactPhone == nil && p.Address == nil
}

// Apply returns o with the patch applied.
func (p OrganizationPatch) Apply(o Organization) Organization {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.ContactEmail != nil {
		o.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		o.ContactPhone = *p.ContactPhone
	}
	if p.Address != nil {
		o.Address = *p.Address
	}
	return o
}
