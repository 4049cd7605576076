package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
)

type invitationsRepo struct{ conn }

const invitationColumns = `id, email, token_fingerprint, role, organization_id, invited_by,
	expires_at, used, used_by, used_at, created_at`

func scanInvitation(s scanner) (domain.Invitation, error) {
	var (
		inv              domain.Invitation
		role             string
		usedBy           sql.NullString
		usedAt           sql.NullInt64
		expires, created int64
	)
	err := s.Scan(&inv.ID, &inv.Email, &inv.TokenFingerprint, &role, &inv.OrganizationID, &inv.InvitedBy,
		&expires, &inv.Used, &usedBy, &usedAt, &created)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Role = domain.Role(role)
	inv.ExpiresAt = fromMillis(expires)
	inv.UsedBy = usedBy.String
	inv.UsedAt = timePtr(usedAt)
	inv.CreatedAt = fromMillis(created)
	return inv, nil
}

func (r invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.exec(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TokenFingerprint, string(inv.Role), inv.OrganizationID, inv.InvitedBy,
		toMillis(inv.ExpiresAt), inv.Used, nullString(inv.UsedBy), nullMillis(inv.UsedAt),
		toMillis(inv.CreatedAt),
	)
	return err
}

func (r invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
	if err != nil {
		return domain.Invitation{}, r.mapErr(err)
	}
	return inv, nil
}

func (r invitationsRepo) GetInvitationByFingerprint(ctx context.Context, fingerprint string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.queryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_fingerprint = ?`, fingerprint))
	if err != nil {
		return domain.Invitation{}, r.mapErr(err)
	}
	return inv, nil
}

func (r invitationsRepo) ListInvitationsByOrganization(ctx context.Context, orgID string) ([]domain.Invitation, error) {
	rows, err := r.query(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC`, orgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanInvitation)
}

// ConsumeInvitation is the single statement that decides which of several
// concurrent redeemers wins: the row only matches while it is still unused
// and unexpired.
func (r invitationsRepo) ConsumeInvitation(ctx context.Context, id, usedBy string, now time.Time) error {
	return r.execOne(ctx, store.ErrConflict, `
		UPDATE invitations
		SET used = ?, used_by = ?, used_at = ?
		WHERE id = ? AND used = ? AND expires_at > ?`,
		true, usedBy, toMillis(now), id, false, toMillis(now),
	)
}
