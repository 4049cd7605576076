package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
)

// Repositories for rows owned by an organization. Every read filters on
// organization_id.

type clientsRepo struct{ conn }

const clientColumns = `id, organization_id, name, email, phone, notes, created_at`

func scanClient(s scanner) (domain.Client, error) {
	var (
		c       domain.Client
		created int64
	)
	if err := s.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.Phone, &c.Notes, &created); err != nil {
		return domain.Client{}, err
	}
	c.CreatedAt = fromMillis(created)
	return c, nil
}

func (r clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.exec(ctx, `INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrganizationID, c.Name, c.Email, c.Phone, c.Notes, toMillis(c.CreatedAt))
	return err
}

func (r clientsRepo) GetClient(ctx context.Context, orgID, id string) (domain.Client, error) {
	c, err := scanClient(r.queryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE organization_id = ? AND id = ?`, orgID, id))
	if err != nil {
		return domain.Client{}, r.mapErr(err)
	}
	return c, nil
}

func (r clientsRepo) ListClients(ctx context.Context, orgID string) ([]domain.Client, error) {
	rows, err := r.query(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE organization_id = ? ORDER BY created_at DESC, id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanClient)
}

type offeringsRepo struct{ conn }

const offeringColumns = `id, organization_id, name, description, duration_minutes, price_cents, created_at`

func scanOffering(s scanner) (domain.Offering, error) {
	var (
		o       domain.Offering
		created int64
	)
	if err := s.Scan(&o.ID, &o.OrganizationID, &o.Name, &o.Description, &o.DurationMinutes, &o.PriceCents, &created); err != nil {
		return domain.Offering{}, err
	}
	o.CreatedAt = fromMillis(created)
	return o, nil
}

func (r offeringsRepo) CreateOffering(ctx context.Context, o domain.Offering) error {
	_, err := r.exec(ctx, `INSERT INTO offerings (`+offeringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrganizationID, o.Name, o.Description, o.DurationMinutes, o.PriceCents, toMillis(o.CreatedAt))
	return err
}

func (r offeringsRepo) GetOffering(ctx context.Context, orgID, id string) (domain.Offering, error) {
	o, err := scanOffering(r.queryRow(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE organization_id = ? AND id = ?`, orgID, id))
	if err != nil {
		return domain.Offering{}, r.mapErr(err)
	}
	return o, nil
}

func (r offeringsRepo) ListOfferings(ctx context.Context, orgID string) ([]domain.Offering, error) {
	rows, err := r.query(ctx,
		`SELECT `+offeringColumns+` FROM offerings WHERE organization_id = ? ORDER BY created_at DESC, id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanOffering)
}

type bookingsRepo struct{ conn }

const bookingColumns = `id, organization_id, client_id, offering_id, starts_at, status, notes, created_at`

func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b               domain.Booking
		status          string
		starts, created int64
	)
	if err := s.Scan(&b.ID, &b.OrganizationID, &b.ClientID, &b.OfferingID, &starts, &status, &b.Notes, &created); err != nil {
		return domain.Booking{}, err
	}
	b.StartsAt = fromMillis(starts)
	b.Status = domain.BookingStatus(status)
	b.CreatedAt = fromMillis(created)
	return b, nil
}

func (r bookingsRepo) CreateBooking(ctx context.Context, b domain.Booking) error {
	_, err := r.exec(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OrganizationID, b.ClientID, b.OfferingID, toMillis(b.StartsAt), string(b.Status), b.Notes,
		toMillis(b.CreatedAt))
	return err
}

func (r bookingsRepo) GetBooking(ctx context.Context, orgID, id string) (domain.Booking, error) {
	b, err := scanBooking(r.queryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE organization_id = ? AND id = ?`, orgID, id))
	if err != nil {
		return domain.Booking{}, r.mapErr(err)
	}
	return b, nil
}

func (r bookingsRepo) ListBookings(ctx context.Context, orgID string) ([]domain.Booking, error) {
	rows, err := r.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE organization_id = ? ORDER BY starts_at, id`, orgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBooking)
}

func (r bookingsRepo) UpdateBookingStatus(ctx context.Context, orgID, id string, from, to domain.BookingStatus) error {
	return r.execOne(ctx, store.ErrConflict,
		`UPDATE bookings SET status = ? WHERE organization_id = ? AND id = ? AND status = ?`,
		string(to), orgID, id, string(from))
}

type subscriptionsRepo struct{ conn }

const subscriptionColumns = `id, organization_id, plan, status, current_period_end, created_at, updated_at`

func (r subscriptionsRepo) CreateSubscription(ctx context.Context, s domain.Subscription) error {
	_, err := r.exec(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.OrganizationID, string(s.Plan), string(s.Status), toMillis(s.CurrentPeriodEnd),
		toMillis(s.CreatedAt), toMillis(s.UpdatedAt))
	return err
}

func (r subscriptionsRepo) GetSubscriptionByOrganization(ctx context.Context, orgID string) (domain.Subscription, error) {
	var (
		s                           domain.Subscription
		plan, status                string
		periodEnd, created, updated int64
	)
	err := r.queryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE organization_id = ?`, orgID,
	).Scan(&s.ID, &s.OrganizationID, &plan, &status, &periodEnd, &created, &updated)
	if err != nil {
		return domain.Subscription{}, r.mapErr(err)
	}
	s.Plan = domain.Plan(plan)
	s.Status = domain.SubscriptionStatus(status)
	s.CurrentPeriodEnd = fromMillis(periodEnd)
	s.CreatedAt = fromMillis(created)
	s.UpdatedAt = fromMillis(updated)
	return s, nil
}

func (r subscriptionsRepo) UpdateSubscription(ctx context.Context, s domain.Subscription) error {
	return r.execOne(ctx, store.ErrNotFound, `
		UPDATE subscriptions SET plan = ?, status = ?, current_period_end = ?, updated_at = ?
		WHERE organization_id = ?`,
		string(s.Plan), string(s.Status), toMillis(s.CurrentPeriodEnd), toMillis(s.UpdatedAt), s.OrganizationID)
}
