package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return bizsdk.SessionCookie
	}
	return c.Name
}

func (c CookieConfig) set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) token(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return ck.Value
}

type principalKey struct{}

// authenticate resolves the session cookie to a Principal. Requests without
// a live session are rejected with 401 before reaching the next handler.
func authenticate(sessions *service.SessionService, cookie CookieConfig) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			p, err := sessions.Resolve(ctx, cookie.token(r))
			if err != nil {
				if errors.Is(err, service.ErrNotAuthenticated) {
					cookie.clear(w)
				}
				writeError(w, r, err)
				return
			}

			ctx = context.WithValue(ctx, principalKey{}, p)
			ctx = httpx.WithSubject(ctx, p.UserID())
			ctx = slogx.With(ctx,
				slog.String("user_id", p.UserID()),
				slog.String("organization_id", p.OrganizationID()),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalHandler is a handler that is given the authenticated caller.
type PrincipalHandler func(w http.ResponseWriter, r *http.Request, p domain.Principal)

// withPrincipal adapts h to http.Handler. It must sit behind authenticate.
func withPrincipal(h PrincipalHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := r.Context().Value(principalKey{}).(domain.Principal)
		if !ok {
			writeError(w, r, service.ErrNotAuthenticated)
			return
		}
		h(w, r, p)
	})
}
