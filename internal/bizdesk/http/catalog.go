package http

import (
	"net/http"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/domain"
	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/service"
	"github.com/aussiebroadwan/bizdesk/pkg/bizsdk"
	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
)

// CatalogHandler serves clients, offerings and bookings. Every lookup by ID
// goes through the tenant guard, so a foreign ID answers exactly like a
// missing one.
type CatalogHandler struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
}

// HandleCreateClient godoc
//
//	@Summary		Create a client
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.CreateClientRequest	true	"request body"
//	@Success		201		{object}	bizsdk.Client	"client"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/clients [post].
func (h *CatalogHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.CreateClientRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.Catalog.CreateClient(r.Context(), p, service.ClientInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, clientView(c))
}

// HandleGetClient godoc
//
//	@Summary		Get a client
//	@Tags			Clients
//	@Produce		json
//	@Param			id		path		string	true	"Client ID"
//	@Success		200		{object}	bizsdk.Client	"client"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"access_denied - missing and foreign ids answer alike"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/clients/{id} [get].
func (h *CatalogHandler) HandleGetClient(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	c, err := h.Catalog.GetClient(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, clientView(c))
}

// HandleListClients godoc
//
//	@Summary		List clients
//	@Tags			Clients
//	@Produce		json
//	@Success		200		{object}	bizsdk.ClientList	"clients"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/clients [get].
func (h *CatalogHandler) HandleListClients(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	cs, err := h.Catalog.ListClients(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bizsdk.ClientList{Clients: mapSlice(cs, clientView)})
}

// HandleCreateOffering godoc
//
//	@Summary		Create an offering
//	@Tags			Offerings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.CreateOfferingRequest	true	"request body"
//	@Success		201		{object}	bizsdk.Offering	"offering"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/offerings [post].
func (h *CatalogHandler) HandleCreateOffering(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.CreateOfferingRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Catalog.CreateOffering(r.Context(), p, service.OfferingInput{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, offeringView(o))
}

// HandleGetOffering godoc
//
//	@Summary		Get an offering
//	@Tags			Offerings
//	@Produce		json
//	@Param			id		path		string	true	"Offering ID"
//	@Success		200		{object}	bizsdk.Offering	"offering"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"access_denied - missing and foreign ids answer alike"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/offerings/{id} [get].
func (h *CatalogHandler) HandleGetOffering(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	o, err := h.Catalog.GetOffering(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offeringView(o))
}

// HandleListOfferings godoc
//
//	@Summary		List offerings
//	@Tags			Offerings
//	@Produce		json
//	@Success		200		{object}	bizsdk.OfferingList	"offerings"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/offerings [get].
func (h *CatalogHandler) HandleListOfferings(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	offs, err := h.Catalog.ListOfferings(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bizsdk.OfferingList{Offerings: mapSlice(offs, offeringView)})
}

// HandleCreateBooking godoc
//
//	@Summary		Create a booking
//	@Description	Client and offering must belong to the caller's organization.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			request	body		bizsdk.CreateBookingRequest	true	"request body"
//	@Success		201		{object}	bizsdk.Booking	"booking"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"access_denied - missing and foreign ids answer alike"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/bookings [post].
func (h *CatalogHandler) HandleCreateBooking(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.CreateBookingRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.Bookings.Create(r.Context(), p, service.BookingInput{
		ClientID:   req.ClientID,
		OfferingID: req.OfferingID,
		StartsAt:   req.StartsAt,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, bookingView(b))
}

// HandleGetBooking godoc
//
//	@Summary		Get a booking
//	@Tags			Bookings
//	@Produce		json
//	@Param			id		path		string	true	"Booking ID"
//	@Success		200		{object}	bizsdk.Booking	"booking"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"access_denied - missing and foreign ids answer alike"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/bookings/{id} [get].
func (h *CatalogHandler) HandleGetBooking(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	b, err := h.Bookings.Get(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookingView(b))
}

// HandleListBookings godoc
//
//	@Summary		List bookings
//	@Tags			Bookings
//	@Produce		json
//	@Success		200		{object}	bizsdk.BookingList	"bookings"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/bookings [get].
func (h *CatalogHandler) HandleListBookings(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	bs, err := h.Bookings.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bizsdk.BookingList{Bookings: mapSlice(bs, bookingView)})
}

// HandleUpdateBookingStatus godoc
//
//	@Summary		Change booking status
//	@Description	Only a scheduled booking can move, to cancelled or completed.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Booking ID"
//	@Param			request	body		bizsdk.UpdateBookingStatusRequest	true	"request body"
//	@Success		200		{object}	bizsdk.Booking	"booking"
//	@Failure		400		{object}	bizsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	bizsdk.ErrorResponse	"not_authenticated"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"no_organization, insufficient_permissions"
//	@Failure		403		{object}	bizsdk.ErrorResponse	"access_denied - missing and foreign ids answer alike"
//	@Failure		409		{object}	bizsdk.ErrorResponse	"invalid_status_transition"
//	@Failure		429		{object}	bizsdk.ErrorResponse	"rate_limit_exceeded"
//	@Failure		500		{object}	bizsdk.ErrorResponse	"server_error"
//	@Security		SessionCookie
//	@Router			/v1/bookings/{id}/status [patch].
func (h *CatalogHandler) HandleUpdateBookingStatus(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	var req bizsdk.UpdateBookingStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.Bookings.UpdateStatus(r.Context(), p, r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookingView(b))
}
