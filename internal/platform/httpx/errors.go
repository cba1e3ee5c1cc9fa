package httpx

import (
	"errors"
	"net/http"

	"github.com/propfind/propfind/internal/shared"
)

// RespondError maps domain errors to envelope responses. Anything that is not
// a recognized domain error is reported generically; the caller is expected to
// have logged the detail already.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrDuplicateEmail):
		Fail(w, http.StatusBadRequest, shared.ErrDuplicateEmail.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, shared.ErrInvalidCredentials.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, shared.ErrUnauthenticated.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, shared.ErrForbidden.Error())
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, shared.ErrNotFound.Error())
	default:
		Fail(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

// MethodNotAllowed is the chi handler for requests with a wrong HTTP method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Fail(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NotFound is the chi handler for unmatched API routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Fail(w, http.StatusNotFound, "route not found")
}
