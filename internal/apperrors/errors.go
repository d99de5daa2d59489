package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel errors for the calendar integration. Callers classify with
// errors.Is and wrap with fmt.Errorf("%w: ...") to add context.
var (
	// ErrConfiguration means a required setting is missing from the
	// environment. Fatal to the request that needed it.
	ErrConfiguration = errors.New("missing required configuration")

	// ErrNetwork means the provider could not be reached at all.
	ErrNetwork = errors.New("provider unreachable")

	// ErrUpstreamAuth means the provider rejected our credentials, code or
	// refresh token. Not retryable without the user re-authorizing.
	ErrUpstreamAuth = errors.New("provider rejected credentials")

	// ErrUpstreamSync means the provider was reachable but rejected the
	// event listing.
	ErrUpstreamSync = errors.New("provider rejected event listing")

	// ErrValidation means the caller sent malformed or incomplete input.
	ErrValidation = errors.New("invalid input")

	// ErrStorage means the persistence layer failed.
	ErrStorage = errors.New("storage failure")
)

// HTTPStatus maps an error to the status code the HTTP boundary should
// respond with. Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
