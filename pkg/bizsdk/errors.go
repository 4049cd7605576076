package bizsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bizdesk/pkg/httpx"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeNotAuthenticated        = "not_authenticated"
	ErrorCodeInvalidCredentials      = "invalid_credentials"
	ErrorCodeNoOrganization          = "no_organization"
	ErrorCodeInsufficientPermissions = "insufficient_permissions"
	ErrorCodeAccessDenied            = "access_denied"
	ErrorCodeEmailAlreadyRegistered  = "email_already_registered"
	ErrorCodeInvalidToken            = "invalid_token"
	ErrorCodeTokenUsed               = "token_used"
	ErrorCodeTokenExpired            = "token_expired"
	ErrorCodeEmailMismatch           = "email_mismatch"
	ErrorCodeInvalidRole             = "invalid_role"
	ErrorCodeInvalidStatusTransition = "invalid_status_transition"
	ErrorCodeNotFound                = "not_found"
	ErrorCodeRateLimitExceeded       = "rate_limit_exceeded"
	ErrorCodeServerError             = "server_error"
)

// APIError is an error response from the API. The server writes it with
// WriteError and the client decodes it back from the body.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError with the same code, so predefined errors can
// be used with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as a JSON error response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	c := *e
	c.Description = desc
	return &c
}

func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

var (
	ErrInvalidRequest          = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest, "the request is malformed or missing required fields")
	ErrNotAuthenticated        = NewAPIError(http.StatusUnauthorized, ErrorCodeNotAuthenticated, "authentication required")
	ErrInvalidCredentials      = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidCredentials, "invalid email or password")
	ErrNoOrganization          = NewAPIError(http.StatusForbidden, ErrorCodeNoOrganization, "you do not belong to an organization")
	ErrInsufficientPermissions = NewAPIError(http.StatusForbidden, ErrorCodeInsufficientPermissions, "your role does not allow this operation")
	ErrAccessDenied            = NewAPIError(http.StatusForbidden, ErrorCodeAccessDenied, "access denied")
	ErrEmailAlreadyRegistered  = NewAPIError(http.StatusBadRequest, ErrorCodeEmailAlreadyRegistered, "an account with this email already exists")
	ErrInvalidToken            = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidToken, "the invitation token is not valid")
	ErrTokenUsed               = NewAPIError(http.StatusBadRequest, ErrorCodeTokenUsed, "the invitation has already been used")
	ErrTokenExpired            = NewAPIError(http.StatusBadRequest, ErrorCodeTokenExpired, "the invitation has expired")
	ErrEmailMismatch           = NewAPIError(http.StatusBadRequest, ErrorCodeEmailMismatch, "the email does not match the invitation")
	ErrInvalidRole             = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRole, "role must be admin or staff")
	ErrInvalidStatusTransition = NewAPIError(http.StatusConflict, ErrorCodeInvalidStatusTransition, "the booking can no longer change to that status")
	ErrNotFound                = NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "not found")
	ErrServerError             = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError, "internal server error")
)

// parseErrorResponse turns a non-success response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
