package bizsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvitation invites an email address into the caller's organization.
// A failed e-mail delivery is not an error: check EmailDelivered.
func (c *SDKClient) CreateInvitation(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invitations", req, &out,
		http.StatusCreated, http.StatusMultiStatus,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ListInvitations(ctx context.Context) ([]Invitation, error) {
	var out InvitationList
	if err := c.do(ctx, http.MethodGet, "/v1/invitations", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}

// VerifyInvitation previews an invitation without consuming it. No session
// is needed.
func (c *SDKClient) VerifyInvitation(ctx context.Context, token string) (*InvitationPreview, error) {
	var out InvitationPreview
	path := "/v1/invitations/verify/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
