package bizsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *SDKClient) GetOrganization(ctx context.Context) (*Organization, error) {
	var out Organization
	if err := c.do(ctx, http.MethodGet, "/v1/organization", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest) (*Organization, error) {
	var out Organization
	if err := c.do(ctx, http.MethodPatch, "/v1/organization", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ListMembers(ctx context.Context) ([]User, error) {
	var out MemberList
	if err := c.do(ctx, http.MethodGet, "/v1/organization/members", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Members, nil
}

func (c *SDKClient) CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error) {
	var out Client
	if err := c.do(ctx, http.MethodPost, "/v1/clients", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) GetClient(ctx context.Context, id string) (*Client, error) {
	var out Client
	if err := c.do(ctx, http.MethodGet, "/v1/clients/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ListClients(ctx context.Context) ([]Client, error) {
	var out ClientList
	if err := c.do(ctx, http.MethodGet, "/v1/clients", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

func (c *SDKClient) CreateOffering(ctx context.Context, req CreateOfferingRequest) (*Offering, error) {
	var out Offering
	if err := c.do(ctx, http.MethodPost, "/v1/offerings", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) GetOffering(ctx context.Context, id string) (*Offering, error) {
	var out Offering
	if err := c.do(ctx, http.MethodGet, "/v1/offerings/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ListOfferings(ctx context.Context) ([]Offering, error) {
	var out OfferingList
	if err := c.do(ctx, http.MethodGet, "/v1/offerings", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Offerings, nil
}

func (c *SDKClient) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/v1/bookings", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodGet, "/v1/bookings/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ListBookings(ctx context.Context) ([]Booking, error) {
	var out BookingList
	if err := c.do(ctx, http.MethodGet, "/v1/bookings", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *SDKClient) UpdateBookingStatus(ctx context.Context, id, status string) (*Booking, error) {
	var out Booking
	path := "/v1/bookings/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, UpdateBookingStatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) GetSubscription(ctx context.Context) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscription", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ChangePlan(ctx context.Context, plan string) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPut, "/v1/subscription/plan", ChangePlanRequest{Plan: plan}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
