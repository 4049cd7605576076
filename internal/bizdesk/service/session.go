package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/cryptox"
	"github.com/aussiebroadwan/bizdesk/pkg/idx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// DefaultSessionTTL is how long a login lasts.
const DefaultSessionTTL = 7 * 24 * time.Hour

// IssuedSession is a freshly created session. Token is the only copy of the
// raw cookie value.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

// SessionService logs users in and resolves session tokens back to a
// Principal.
type SessionService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	TTL    time.Duration
	Clock  Clock
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords both return ErrInvalidCredentials after the same hashing work.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, IssuedSession, error) {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, IssuedSession{}, invalid("email and password are required")
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.Decoy(ctx, password)
			log.Info("login failed: unknown email")
			return domain.User{}, IssuedSession{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", slogx.Err(err))
		return domain.User{}, IssuedSession{}, err
	}

	ok, err := s.Hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, cryptox.ErrCorruptCredential) {
			log.Error("stored credential is corrupt",
				slog.String("user_id", user.ID),
				slogx.Err(err),
			)
		}
		return domain.User{}, IssuedSession{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		log.Info("login failed: wrong password", slog.String("user_id", user.ID))
		return domain.User{}, IssuedSession{}, ErrInvalidCredentials
	}

	sess, err := s.Issue(ctx, s.Store, user.ID)
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, sess, nil
}

// Issue creates a session for userID through repos, which may be a Tx so the
// session commits together with the user it belongs to.
func (s *SessionService) Issue(ctx context.Context, repos store.Store, userID string) (IssuedSession, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssuedSession{}, err
	}

	now := s.Clock.now()
	sess := domain.Session{
		ID:               idx.NewAt(now).String(),
		TokenFingerprint: cryptox.FingerprintToken(token),
		UserID:           userID,
		ExpiresAt:        now.Add(s.ttl()),
		CreatedAt:        now,
	}
	if err := repos.Sessions().CreateSession(ctx, sess); err != nil {
		slogx.FromContext(ctx).Error("failed to create session",
			slog.String("user_id", userID),
			slogx.Err(err),
		)
		return IssuedSession{}, err
	}

	return IssuedSession{Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

// Resolve maps a session token to the current Principal. The user row is
// read fresh so role and organization changes apply on the next request.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrNotAuthenticated
	}

	sess, err := s.Store.Sessions().GetSessionByFingerprint(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrNotAuthenticated
		}
		return domain.Principal{}, err
	}

	if sess.Expired(s.Clock.now()) {
		return domain.Principal{}, ErrNotAuthenticated
	}

	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrNotAuthenticated
		}
		return domain.Principal{}, err
	}

	return domain.Principal{User: user, SessionID: sess.ID}, nil
}

// Logout deletes the session behind token. Unknown tokens are not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Store.Sessions().DeleteSessionByFingerprint(ctx, cryptox.FingerprintToken(token))
}
