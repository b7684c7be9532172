package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserAlreadyExists is returned when a handle is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when handle or secret do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a user record is absent.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountNotFound is returned when a user has no monetary account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidToken is returned when a session token cannot be verified.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Public messages written in response bodies.
const (
	MsgInvalidInputs  = "Invalid Inputs"
	MsgUserExists     = "User already exists!"
	MsgUserNotFound   = "User not found"
	MsgBadCredentials = "User Not found!"
	MsgAccountMissing = "Account not found"
	MsgInternal       = "Internal Server Error"
	MsgUnauthorized   = "Unauthorized"
)

// StatusRejected is the status returned for duplicate signups, failed
// signins and malformed signin or update payloads. Clients depend on it.
const StatusRejected = http.StatusLengthRequired

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Msg: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unrecognised becomes a generic 500 without internal detail.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(StatusRejected, MsgUserExists)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(StatusRejected, MsgBadCredentials)
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, MsgAccountMissing)
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, MsgUnauthorized)
	default:
		return NewHTTPError(http.StatusInternalServerError, MsgInternal)
	}
}
