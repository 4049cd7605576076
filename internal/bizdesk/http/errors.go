package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
	"github.com/aussiebroadwan/bizdesk/pkg/slogx"
)

// apiError classifies err into the response the client sees. Anything not
// recognised, a corrupt stored credential among them, is a server error.
func apiError(err error) *bizsdk.APIError {
	var reqErr *service.RequestError

	switch {
	case errors.As(err, &reqErr):
		return bizsdk.ErrInvalidRequest.WithDescription(reqErr.Reason)
	case errors.Is(err, httpx.ErrBadBody), errors.Is(err, service.ErrInvalidRequest):
		return bizsdk.ErrInvalidRequest

	case errors.Is(err, service.ErrNotAuthenticated):
		return bizsdk.ErrNotAuthenticated
	case errors.Is(err, service.ErrInvalidCredentials):
		return bizsdk.ErrInvalidCredentials

	case errors.Is(err, service.ErrNoOrganization):
		return bizsdk.ErrNoOrganization
	case errors.Is(err, service.ErrInsufficientPermissions):
		return bizsdk.ErrInsufficientPermissions
	case errors.Is(err, service.ErrAccessDenied):
		return bizsdk.ErrAccessDenied

	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return bizsdk.ErrEmailAlreadyRegistered
	case errors.Is(err, service.ErrInvalidToken):
		return bizsdk.ErrInvalidToken
	case errors.Is(err, service.ErrTokenUsed):
		return bizsdk.ErrTokenUsed
	case errors.Is(err, service.ErrTokenExpired):
		return bizsdk.ErrTokenExpired
	case errors.Is(err, service.ErrEmailMismatch):
		return bizsdk.ErrEmailMismatch
	case errors.Is(err, service.ErrInvalidRole):
		return bizsdk.ErrInvalidRole
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return bizsdk.ErrInvalidStatusTransition

	case errors.Is(err, store.ErrNotFound):
		return bizsdk.ErrNotFound
	default:
		return bizsdk.ErrServerError
	}
}

// writeError logs err when it is the server's fault and writes the mapped
// response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	if e.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slogx.Err(err),
		)
	}
	e.WriteError(w)
}

// writeVerifyError is writeError for the public verify endpoint, where an
// unknown token is a 404 rather than a bad request.
func writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidToken) {
		bizsdk.NewAPIError(http.StatusNotFound, bizsdk.ErrorCodeInvalidToken, bizsdk.ErrInvalidToken.Description).WriteError(w)
		return
	}
	writeError(w, r, err)
}
