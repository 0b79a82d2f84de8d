package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// RemoteError is a business-rule rejection reported by a remote database
// procedure. Its message is meant for the member and is surfaced verbatim.
type RemoteError struct {
	Procedure string
	Message   string
}

// Error implements error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Procedure, e.Message)
}

// NewRemoteError creates a RemoteError for the given procedure
func NewRemoteError(procedure, message string) *RemoteError {
	return &RemoteError{Procedure: procedure, Message: message}
}

// IsRemoteRejection reports whether err carries a remote procedure rejection
func IsRemoteRejection(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}

// Normalize turns any error into the text shown to the caller.
// Remote rejections and CustomError messages pass through unchanged;
// everything else (transport failures, decode errors, panics turned into
// errors) collapses to fallback so internal details never leave the server.
func Normalize(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if msg := strings.TrimSpace(remoteErr.Message); msg != "" {
			return msg
		}
		return fallback
	}

	var customErr *CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}

	return fallback
}
