package bizsdk

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestSessionCookieIsKept(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "tok", Path: "/", HttpOnly: true})
		httpx.WriteJSON(w, http.StatusOK, UserResponse{User: User{ID: "u1", Email: "a@b.c"}})
	})
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(SessionCookie)
		if err != nil || ck.Value != "tok" {
			ErrNotAuthenticated.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, UserResponse{User: User{ID: "u1"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewSDKClient(srv.URL + "/")
	require.NoError(t, err)

	_, err = c.Me(t.Context())
	require.ErrorIs(t, err, ErrNotAuthenticated)

	u, err := c.Login(t.Context(), "a@b.c", "pw")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "tok", c.SessionToken())

	me, err := c.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "u1", me.ID)
}

func TestAPIErrorRoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrTokenUsed.WithDescription("used yesterday").WriteError(w)
	}))
	defer srv.Close()

	c, err := NewSDKClient(srv.URL)
	require.NoError(t, err)

	_, err = c.VerifyInvitation(t.Context(), "abc")
	require.ErrorIs(t, err, ErrTokenUsed)
	require.NotErrorIs(t, err, ErrTokenExpired)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "used yesterday", apiErr.Description)
}

func TestNonJSONErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewSDKClient(srv.URL)
	require.NoError(t, err)

	_, err = c.GetLiveness(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}

func TestCreateInvitationAcceptsMultiStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusMultiStatus, InviteResponse{
			InvitationID:   "inv1",
			EmailDelivered: false,
			Warning:        "invitation created but the email could not be sent",
		})
	}))
	defer srv.Close()

	c, err := NewSDKClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.CreateInvitation(t.Context(), InviteRequest{Email: "bob@x.com", Role: "staff"})
	require.NoError(t, err)
	require.False(t, resp.EmailDelivered)
	require.NotEmpty(t, resp.Warning)
}
