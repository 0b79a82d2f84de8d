package apperrors

import "errors"

// Request and resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrPermissionDenied = errors.New("permission denied")
)

// Session errors. ErrSessionInvalid wraps every refresh failure so the
// session middleware can treat them alike.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
)

var ErrCourseNotFound = errors.New("course not found")

// ErrInvalidOneTimeToken covers unknown, expired and already used email link tokens
var ErrInvalidOneTimeToken = errors.New("invalid or expired one-time token")

// CustomError pairs a sentinel with a message that is safe to show the caller.
// errors.Is sees the sentinel; Normalize and HandleAPIError use the message.
type CustomError struct {
	Err     error
	Message string
}

func (e *CustomError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "unknown error"
	}
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// NewNotAuthenticatedError is returned by reads that need a signed-in caller
func NewNotAuthenticatedError(message string) error {
	return NewCustomError(ErrNotAuthenticated, message)
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return NewCustomError(ErrBadRequest, message)
}
