/*
Package bizsdk is a Go client for the bizdesk HTTP API.

The API authenticates with a session cookie, so an SDKClient keeps a cookie
jar and behaves like one logged-in browser:

	c, err := bizsdk.NewSDKClient("https://bizdesk.example.com")

	// Found an organization; the session cookie is stored on c.
	reg, err := c.Register(ctx, bizsdk.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})

	// Invite a colleague.
	inv, err := c.CreateInvitation(ctx, bizsdk.InviteRequest{Email: "bob@example.com", Role: "admin"})

A second SDKClient is needed to act as the invitee.

# Errors

Every non-success response is returned as an *APIError carrying the HTTP
status and the machine-readable code from the body:

	var apiErr *bizsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == bizsdk.ErrorCodeTokenUsed {
		// ...
	}

The same type is used by the server to write error responses, so both sides
agree on the shape.
*/
package bizsdk
