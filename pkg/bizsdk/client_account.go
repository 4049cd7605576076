package bizsdk

import (
	"context"
	"net/http"
)

// Register founds a new organization and logs the client in as its founder.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/v1/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterWithInvite redeems an invitation and logs the client in as the
// new member.
func (c *SDKClient) RegisterWithInvite(ctx context.Context, req RegisterWithInviteRequest) (*RegisterWithInviteResponse, error) {
	var out RegisterWithInviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/register-with-invite", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) Login(ctx context.Context, email, password string) (*User, error) {
	var out UserResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/v1/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *SDKClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/logout", nil, nil, http.StatusOK)
}

// Me returns the user behind the current session.
func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}
