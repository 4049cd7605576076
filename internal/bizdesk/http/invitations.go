package http

import (
	"net/http"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
)

const deliveryWarning = "invitation created but the email could not be sent; share the invite link manually"

type InvitationHandler struct {
	Invitations *service.InvitationService

	// ExposeLinks returns the invite link on every successful issue, not
	// only when the e-mail failed. Meant for development.
	ExposeLinks bool
}

// HandleCreate godoc
//
//	@Summary		Issue an invitation
//	@Description	Creates an invitation and e-mails the registration link. When the e-mail cannot be delivered the invitation still exists and the response is 207 with a warning and the link.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.InviteRequest	true	"request body"
//	@Success		201		{object}	bizsdk.InviteResponse	"invitation_id, email, role, expires_at, email_delivered"
//	@Success		207		{object}	bizsdk.InviteResponse	"email not delivered: warning, invite_link"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request, invalid_role, email_already_registered"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/invitations [post].
func (h *InvitationHandler) HandleCreate(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.InviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	issued, err := h.Invitations.Issue(r.Context(), p, req.Email, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := bizsdk.InviteResponse{
		InvitationID:   issued.Invitation.ID,
		Email:          issued.Invitation.Email,
		Role:           issued.Invitation.Role.String(),
		ExpiresAt:      issued.Invitation.ExpiresAt,
		EmailDelivered: issued.Delivered,
	}

	status := http.StatusCreated
	if !issued.Delivered {
		status = http.StatusMultiStatus
		resp.Warning = deliveryWarning
		resp.InviteLink = issued.Link
	}
	if h.ExposeLinks {
		resp.InviteLink = issued.Link
	}

	httpx.WriteJSON(w, status, resp)
}

// HandleList godoc
//
//	@Summary		List invitations
//	@Description	Returns the organization's invitations, newest first.
//	@Tags			Invitations
//	@Produce		json
//	@Success		200		{object}	bizsdk.InvitationList	"invitations"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/invitations [get].
func (h *InvitationHandler) HandleList(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	invs, err := h.Invitations.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.Invitations.Now()
	httpx.WriteJSON(w, http.StatusOK, bizsdk.InvitationList{
		Invitations: mapSlice(invs, func(i domain.Invitation) bizsdk.Invitation {
			return invitationView(i, now)
		}),
	})
}

// HandleVerify godoc
//
//	@Summary		Preview an invitation
//	@Description	Reports what a token grants without consuming it. Needs no session.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token		path		string	true	"Invitation token"
//	@Success		200		{object}	bizsdk.InvitationPreview	"email, role, organization_id, organization_name, expires_at"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"token_used, token_expired"
//	@Failure		404		{object}	bizsdk.ErrorResponse	"invalid_token"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Router			/v1/invitations/verify/{token} [get].
func (h *InvitationHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	preview, err := h.Invitations.Verify(r.Context(), r.PathValue("token"))
	if err != nil {
		writeVerifyError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, bizsdk.InvitationPreview{
		Email:            preview.Email,
		Role:             preview.Role.String(),
		OrganizationID:   preview.OrganizationID,
		OrganizationName: preview.OrganizationName,
		ExpiresAt:        preview.ExpiresAt,
	})
}
