package breeze

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrInvalidURL      = errors.New("invalid URL")
	ErrInvalidResponse = errors.New("invalid response")
	ErrDecode          = errors.New("decoding response")
	ErrEncode          = errors.New("encoding request body")
	ErrTransport       = errors.New("transport failure")
	ErrNilTransport    = errors.New("transport is required")
	ErrNilEnvironment  = errors.New("environment is required")
	ErrEmptyKey        = errors.New("item key is required")
	ErrConfigRequired  = errors.New("config is required")
	ErrBaseURLRequired = errors.New("base URL is required")
)

// HTTPError is returned when the backend answers with a status outside 2xx.
// Body holds the raw response bytes for backend-specific error payloads.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("http error: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), string(e.Body))
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an *HTTPError.
func StatusCode(err error) int {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 from the backend.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 from the backend.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsConflict checks if the error is a 409 from the backend, which Breeze
// backends return when an optimistic-concurrency check fails.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}
