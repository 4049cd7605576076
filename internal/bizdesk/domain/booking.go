package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingScheduled BookingStatus = "scheduled"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingScheduled, BookingCancelled, BookingCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("domain: unknown booking status %q", s)
	}
}

// CanTransition reports whether a booking may move from s to next. Only
// scheduled bookings change; cancelled and completed are final.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	return s == BookingScheduled && next != BookingScheduled
}

// Booking places a client on an offering. Client and offering belong to the
// booking's organization.
type Booking struct {
	ID             string
	OrganizationID string
	ClientID       string
	OfferingID     string
	StartsAt       time.Time
	Status         BookingStatus
	Notes          string
	CreatedAt      time.Time
}
