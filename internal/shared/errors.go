package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown email and wrong
	// password both map here so callers cannot tell which part failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail occurs when a registration or profile update collides
	// with an existing account email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnauthenticated occurs when a request carries no usable bearer token.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden occurs when an authenticated caller does not own the resource.
	ErrForbidden = errors.New("access denied")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
)
