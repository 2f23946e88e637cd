package domain

import "errors"

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown submission or show.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks an invalid, expired or absent action token.
	ErrUnauthorized = errors.New("invalid or expired token")
	// ErrDuplicate is returned by storage when a unique key already exists.
	ErrDuplicate = errors.New("duplicate")
	// ErrUpstream marks a platform or network failure.
	ErrUpstream = errors.New("upstream fetch failed")
	// ErrMissingCredentials marks a platform adapter without configured credentials.
	ErrMissingCredentials = errors.New("platform credentials not configured")
)

// UserError carries a caller-facing message on top of one of the sentinels above.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Kind }

// NewUserError wraps kind with a message safe to return to callers.
func NewUserError(kind error, message string) error {
	return &UserError{Kind: kind, Message: message}
}

// UserMessage extracts the caller-facing message, or fallback when err has none.
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return fallback
}
