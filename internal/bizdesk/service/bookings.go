package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

type BookingInput struct {
	ClientID   string
	OfferingID string
	StartsAt   time.Time
	Notes      string
}

type BookingService struct {
	Store store.Store
	Clock Clock
}

// Create books a client onto an offering. Both must belong to the caller's
// organization; a foreign or missing one is ErrAccessDenied.
func (s *BookingService) Create(ctx context.Context, p domain.Principal, in BookingInput) (domain.Booking, error) {
	if err := Authorize(ctx, p, OpBookingWrite); err != nil {
		return domain.Booking{}, err
	}

	if in.ClientID == "" || in.OfferingID == "" {
		return domain.Booking{}, invalid("client_id and offering_id are required")
	}
	if in.StartsAt.IsZero() {
		return domain.Booking{}, invalid("starts_at is required")
	}
	notes, err := optionalText("notes", in.Notes)
	if err != nil {
		return domain.Booking{}, err
	}

	if _, err := loadOwned(ctx, p, OpClientRead, in.ClientID, s.Store.Clients().GetClient); err != nil {
		return domain.Booking{}, err
	}
	if _, err := loadOwned(ctx, p, OpOfferingRead, in.OfferingID, s.Store.Offerings().GetOffering); err != nil {
		return domain.Booking{}, err
	}

	now := s.Clock.now()
	b := domain.Booking{
		ID:             idx.NewAt(now).String(),
		OrganizationID: p.OrganizationID(),
		ClientID:       in.ClientID,
		OfferingID:     in.OfferingID,
		StartsAt:       in.StartsAt.UTC().Truncate(time.Millisecond),
		Status:         domain.BookingScheduled,
		Notes:          notes,
		CreatedAt:      now,
	}
	if err := s.Store.Bookings().CreateBooking(ctx, b); err != nil {
		slogx.FromContext(ctx).Error("failed to create booking", slogx.Err(err))
		return domain.Booking{}, err
	}

	slogx.FromContext(ctx).Info("booking created",
		slog.String("booking_id", b.ID),
		slog.String("organization_id", b.OrganizationID),
	)
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, p domain.Principal, id string) (domain.Booking, error) {
	return loadOwned(ctx, p, OpBookingRead, id, s.Store.Bookings().GetBooking)
}

func (s *BookingService) List(ctx context.Context, p domain.Principal) ([]domain.Booking, error) {
	if err := Authorize(ctx, p, OpBookingRead); err != nil {
		return nil, err
	}
	return s.Store.Bookings().ListBookings(ctx, p.OrganizationID())
}

// UpdateStatus moves a scheduled booking to cancelled or completed.
func (s *BookingService) UpdateStatus(ctx context.Context, p domain.Principal, id, status string) (domain.Booking, error) {
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return domain.Booking{}, invalid("status must be scheduled, cancelled or completed")
	}

	b, err := loadOwned(ctx, p, OpBookingWrite, id, s.Store.Bookings().GetBooking)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransition(next) {
		return domain.Booking{}, ErrInvalidStatusTransition
	}

	err = s.Store.Bookings().UpdateBookingStatus(ctx, p.OrganizationID(), b.ID, b.Status, next)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Booking{}, ErrInvalidStatusTransition
		}
		return domain.Booking{}, err
	}

	slogx.FromContext(ctx).Info("booking status changed",
		slog.String("booking_id", b.ID),
		slog.String("from", string(b.Status)),
		slog.String("to", string(next)),
	)
	b.Status = next
	return b, nil
}
