package domain

import "time"

// Client is a customer of the organization.
type Client struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	Phone          string
	Notes          string
	CreatedAt      time.Time
}

// Offering is a service the organization sells.
type Offering struct {
	ID              string
	OrganizationID  string
	Name            string
	Description     string
	DurationMinutes int
	PriceCents      int64
	CreatedAt       time.Time
}
