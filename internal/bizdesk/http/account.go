package http

import (
	"net/http"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
)

// AccountHandler serves registration, login and the current session.
type AccountHandler struct {
	Registration *service.RegistrationService
	Sessions     *service.SessionService
	Cookie       CookieConfig
}

// HandleRegister godoc
//
//	@Summary		Open registration
//	@Description	Founds a new organization with the caller as founder, a free subscription and a session.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.RegisterRequest	true	"request body"
//	@Success		201		{object}	bizsdk.RegisterResponse	"user, organization; sets the session cookie"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request, email_already_registered"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Router			/v1/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req bizsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	reg, err := h.Registration.Register(r.Context(), service.RegisterInput{
		Name:             req.Name,
		Email:            req.Email,
		Password:         req.Password,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, reg.Session.Token, reg.Session.ExpiresAt)
	httpx.WriteJSON(w, http.StatusCreated, bizsdk.RegisterResponse{
		User:         userView(reg.User),
		Organization: organizationView(reg.Organization),
	})
}

// HandleRegisterWithInvite godoc
//
//	@Summary		Register with an invitation
//	@Description	Redeems an invitation token and joins its organization at the invited role.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.RegisterWithInviteRequest	true	"request body"
//	@Success		201		{object}	bizsdk.RegisterWithInviteResponse	"user, organization_id, role; sets the session cookie"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_token, token_used, token_expired, email_mismatch, email_already_registered"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Router			/v1/register-with-invite [post].
func (h *AccountHandler) HandleRegisterWithInvite(w http.ResponseWriter, r *http.Request) {
	var req bizsdk.RegisterWithInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	red, err := h.Registration.RegisterWithInvite(r.Context(), service.RedeemInput{
		Token:    req.Token,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, red.Session.Token, red.Session.ExpiresAt)
	httpx.WriteJSON(w, http.StatusCreated, bizsdk.RegisterWithInviteResponse{
		User:           userView(red.User),
		OrganizationID: red.User.OrganizationID,
		Role:           red.User.Role.String(),
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Opens a session for valid credentials.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.LoginRequest	true	"request body"
//	@Success		200		{object}	bizsdk.UserResponse	"user; sets the session cookie"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Router			/v1/login [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req bizsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, sess, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.set(w, sess.Token, sess.ExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, bizsdk.UserResponse{User: userView(user)})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Deletes the session and always clears the cookie, even when the session is already gone.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200		{object}	bizsdk.StatusResponse	"status"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Router			/v1/logout [post].
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), h.Cookie.token(r)); err != nil {
		writeError(w, r, err)
		return
	}

	h.Cookie.clear(w)
	httpx.WriteJSON(w, http.StatusOK, bizsdk.StatusResponse{Status: "logged_out"})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Tags			Accounts
//	@Produce		json
//	@Success		200		{object}	bizsdk.UserResponse	"user"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	httpx.WriteJSON(w, http.StatusOK, bizsdk.UserResponse{User: userView(p.User)})
}
