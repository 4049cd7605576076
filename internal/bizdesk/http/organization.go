package http

import (
	"net/http"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
)

type OrganizationHandler struct {
	Organizations *service.OrganizationService
	Subscriptions *service.SubscriptionService
}

// HandleGet godoc
//
//	@Summary		Get the caller's organization
//	@Tags			Organization
//	@Produce		json
//	@Success		200		{object}	bizsdk.Organization	"organization"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/organization [get].
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	org, err := h.Organizations.Get(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, organizationView(org))
}

// HandleUpdate godoc
//
//	@Summary		Update organization settings
//	@Description	Only the fields present in the body change. Founder or admin.
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.UpdateOrganizationRequest	true	"request body"
//	@Success		200		{object}	bizsdk.Organization	"organization"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/organization [patch].
func (h *OrganizationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.UpdateOrganizationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	org, err := h.Organizations.Update(r.Context(), p, domain.OrganizationPatch{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, organizationView(org))
}

// HandleMembers godoc
//
//	@Summary		List team members
//	@Tags			Organization
//	@Produce		json
//	@Success		200		{object}	bizsdk.MemberList	"members"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/organization/members [get].
func (h *OrganizationHandler) HandleMembers(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	users, err := h.Organizations.Members(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bizsdk.MemberList{Members: mapSlice(users, userView)})
}

// HandleGetSubscription godoc
//
//	@Summary		Get the subscription
//	@Tags			Subscription
//	@Produce		json
//	@Success		200		{object}	bizsdk.Subscription	"plan, status, current_period_end"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/subscription [get].
func (h *OrganizationHandler) HandleGetSubscription(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	sub, err := h.Subscriptions.Get(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subscriptionView(sub))
}

// HandleChangePlan godoc
//
//	@Summary		Change plan
//	@Description	Switches the mocked billing plan. No payment is taken. Founder only.
//	@Tags			Subscription
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.ChangePlanRequest	true	"request body"
//	@Success		200		{object}	bizsdk.Subscription	"plan, status, current_period_end"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/subscription/plan [put].
func (h *OrganizationHandler) HandleChangePlan(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.ChangePlanRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sub, err := h.Subscriptions.ChangePlan(r.Context(), p, req.Plan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subscriptionView(sub))
}
