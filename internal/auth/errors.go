package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication and authorization paths. Handlers
// collapse the credential and token failures into one opaque 401 so that
// responses never reveal whether an account exists or why a token failed;
// the distinct values exist for logging and tests.
var (
	ErrDuplicateIdentity  = errors.New("username, email or national id already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is deactivated")
	ErrTokenMalformed     = errors.New("token is malformed or has an invalid signature")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPermissionDenied   = errors.New("permission denied")
)

// ValidationError reports a rejected input field together with the specific
// rule that was not met, so callers can present actionable feedback.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
