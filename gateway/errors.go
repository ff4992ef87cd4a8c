package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// FallbackMessage is shown when the backend gave no usable message.
const FallbackMessage = "Something went wrong. Please try again."

const (
	networkMessage      = "The service is unreachable. Check your connection and try again."
	unauthorizedMessage = "Your session has expired. Please sign in again."
)

var (
	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches any *Error with status 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound matches any *Error with status 404.
	ErrNotFound = errors.New("not found")
	// ErrTransport matches failures where no response was received.
	ErrTransport = errors.New("transport failure")
)

// Error is the uniform failure shape of every gateway call. Message is always human-readable.
type Error struct {
	StatusCode int    // Zero when the request never got a response
	Code       string // Backend error code, if any
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gateway: %s", e.Message)
	}
	return fmt.Sprintf("gateway: %d %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrTransport:
		return e.StatusCode == 0
	}
	return false
}

// Expired is the failure reported when no usable bearer credential remains.
func Expired() *Error {
	return &Error{StatusCode: http.StatusUnauthorized, Message: unauthorizedMessage}
}

// MessageOf extracts the user-facing message from any error.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return FallbackMessage
}

func transportError(err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	// A failed token refresh surfaces through the transport; the session is no longer usable.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &Error{StatusCode: http.StatusUnauthorized, Code: retrieveErr.ErrorCode, Message: unauthorizedMessage, cause: err}
	}
	return &Error{Message: networkMessage, cause: fmt.Errorf("%w: %w", ErrTransport, err)}
}

// errorBody covers the error envelopes the backend is known to emit:
// {"message": "..."}, {"error": "..."}, {"error": {"message": "...", "code": "..."}},
// and the OAuth2 style {"error": "...", "error_description": "..."}.
type errorBody struct {
	Message     string          `json:"message"`
	Code        string          `json:"code"`
	Error       json.RawMessage `json:"error"`
	Description string          `json:"error_description"`
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode}

	var b errorBody
	if err := json.Unmarshal(body, &b); err == nil {
		e.Message = strings.TrimSpace(b.Message)
		e.Code = b.Code

		if len(b.Error) > 0 {
			var s string
			var nested struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			}
			if json.Unmarshal(b.Error, &s) == nil {
				if e.Code == "" {
					e.Code = s
				}
				if e.Message == "" && b.Description == "" {
					e.Message = s
				}
			} else if json.Unmarshal(b.Error, &nested) == nil {
				if e.Message == "" {
					e.Message = nested.Message
				}
				if e.Code == "" {
					e.Code = nested.Code
				}
			}
		}
		if e.Message == "" {
			e.Message = strings.TrimSpace(b.Description)
		}
	}

	if e.Message == "" {
		if statusCode == http.StatusUnauthorized {
			e.Message = unauthorizedMessage
		} else {
			e.Message = FallbackMessage
		}
	}
	return e
}
