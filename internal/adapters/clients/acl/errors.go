package acl

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// maxErrorBody bounds how much of an error response is read for context.
const maxErrorBody = 4 << 10

// ErrorResponse represents an error body from an external service.
// It supports both nested format (error.message) and flat format (message).
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail contains error information from external services.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetMessage returns the error message from either nested or top-level format.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse attempts to parse an error response body.
// Returns nil if the body is empty or carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps a failed exchange to a *domain.NetworkError.
// A transport failure (clientErr set, no response) carries status 0; a
// non-success response carries its status and, when the body has one, the
// remote's message.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return domain.NewNetworkError(serviceName, operation, 0, clientErr)
	}

	if resp == nil {
		return domain.NewNetworkError(serviceName, operation, 0, errors.New("no response received"))
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var cause error
	if errResp := ParseErrorResponse(resp.Body); errResp != nil {
		cause = errors.New(errResp.GetMessage())
	} else if text := http.StatusText(resp.StatusCode); text != "" {
		cause = errors.New(text)
	}

	return domain.NewNetworkError(serviceName, operation, resp.StatusCode, cause)
}
