package bizsdk

import "time"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Accounts
// ============================================================================

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationName string `json:"organization_name,omitempty"`
}

type RegisterResponse struct {
	User         User         `json:"user"`
	Organization Organization `json:"organization"`
}

type RegisterWithInviteRequest struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterWithInviteResponse struct {
	User           User   `json:"user"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is returned by login and /v1/me.
type UserResponse struct {
	User User `json:"user"`
}

// ============================================================================
// Invitations
// ============================================================================

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteResponse is returned with 201, or 207 when the e-mail could not be
// delivered. In the latter case Warning is set and InviteLink carries the
// link so it can be passed on by hand.
type InviteResponse struct {
	InvitationID   string    `json:"invitation_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ExpiresAt      time.Time `json:"expires_at"`
	EmailDelivered bool      `json:"email_delivered"`
	Warning        string    `json:"warning,omitempty"`
	InviteLink     string    `json:"invite_link,omitempty"`
}

type Invitation struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	State     string     `json:"state"`
	InvitedBy string     `json:"invited_by"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type InvitationList struct {
	Invitations []Invitation `json:"invitations"`
}

type InvitationPreview struct {
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// ============================================================================
// Organization
// ============================================================================

type Organization struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateOrganizationRequest is a partial update; nil fields are unchanged.
type UpdateOrganizationRequest struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

type MemberList struct {
	Members []User `json:"members"`
}

// ============================================================================
// Clients, offerings and bookings
// ============================================================================

type Client struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type ClientList struct {
	Clients []Client `json:"clients"`
}

type Offering struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateOfferingRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

type OfferingList struct {
	Offerings []Offering `json:"offerings"`
}

type Booking struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ClientID       string    `json:"client_id"`
	OfferingID     string    `json:"offering_id"`
	StartsAt       time.Time `json:"starts_at"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateBookingRequest struct {
	ClientID   string    `json:"client_id"`
	OfferingID string    `json:"offering_id"`
	StartsAt   time.Time `json:"starts_at"`
	Notes      string    `json:"notes,omitempty"`
}

type BookingList struct {
	Bookings []Booking `json:"bookings"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// ============================================================================
// Subscription
// ============================================================================

type Subscription struct {
	Plan             string    `json:"plan"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ChangePlanRequest struct {
	Plan string `json:"plan"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

// StatusResponse is a bare acknowledgement, e.g. for logout.
type StatusResponse struct {
	Status string `json:"status"`
}
