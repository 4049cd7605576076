package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
)

type orgsRepo struct{ conn }

func (r orgsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.exec(ctx, `
		INSERT INTO organizations (id, name, contact_email, contact_phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.ContactEmail, o.ContactPhone, o.Address,
		toMillis(o.CreatedAt), toMillis(o.UpdatedAt),
	)
	return err
}

func (r orgsRepo) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	var (
		o                domain.Organization
		created, updated int64
	)
	err := r.queryRow(ctx, `
		SELECT id, name, contact_email, contact_phone, address, created_at, updated_at
		FROM organizations WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &o.ContactEmail, &o.ContactPhone, &o.Address, &created, &updated)
	if err != nil {
		return domain.Organization{}, r.mapErr(err)
	}
	o.CreatedAt = fromMillis(created)
	o.UpdatedAt = fromMillis(updated)
	return o, nil
}

func (r orgsRepo) UpdateOrganization(ctx context.Context, o domain.Organization) error {
	return r.execOne(ctx, store.ErrNotFound, `
		UPDATE organizations
		SET name = ?, contact_email = ?, contact_phone = ?, address = ?, updated_at = ?
		WHERE id = ?`,
		o.Name, o.ContactEmail, o.ContactPhone, o.Address, toMillis(o.UpdatedAt), o.ID,
	)
}
