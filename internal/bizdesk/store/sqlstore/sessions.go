package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
)

type sessionsRepo struct{ conn }

func (r sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.exec(ctx, `
		INSERT INTO sessions (id, token_fingerprint, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.TokenFingerprint, s.UserID, toMillis(s.ExpiresAt), toMillis(s.CreatedAt),
	)
	return err
}

func (r sessionsRepo) GetSessionByFingerprint(ctx context.Context, fingerprint string) (domain.Session, error) {
	var (
		s                domain.Session
		expires, created int64
	)
	err := r.queryRow(ctx, `
		SELECT id, token_fingerprint, user_id, expires_at, created_at
		FROM sessions WHERE token_fingerprint = ?`, fingerprint,
	).Scan(&s.ID, &s.TokenFingerprint, &s.UserID, &expires, &created)
	if err != nil {
		return domain.Session{}, r.mapErr(err)
	}
	s.ExpiresAt = fromMillis(expires)
	s.CreatedAt = fromMillis(created)
	return s, nil
}

// DeleteSessionByFingerprint is idempotent.
func (r sessionsRepo) DeleteSessionByFingerprint(ctx context.Context, fingerprint string) error {
	_, err := r.exec(ctx, `DELETE FROM sessions WHERE token_fingerprint = ?`, fingerprint)
	return err
}

func (r sessionsRepo) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := r.exec(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
