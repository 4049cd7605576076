package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
)

type usersRepo struct{ conn }

const userColumns = `id, name, email, password_hash, role, organization_id, created_at, updated_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u                domain.User
		role             string
		orgID            sql.NullString
		created, updated int64
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &orgID, &created, &updated); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.OrganizationID = orgID.String
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.OrganizationID),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return err
}

func (r usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, r.mapErr(err)
	}
	return u, nil
}

func (r usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return domain.User{}, r.mapErr(err)
	}
	return u, nil
}

func (r usersRepo) ListUsersByOrganization(ctx context.Context, orgID string) ([]domain.User, error) {
	rows, err := r.query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE organization_id = ?
		ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r usersRepo) UpdateUserRole(ctx context.Context, id string, role domain.Role, now time.Time) error {
	return r.execOne(ctx, store.ErrNotFound,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), toMillis(now), id,
	)
}
