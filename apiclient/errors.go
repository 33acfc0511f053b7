package apiclient

import (
	"errors"
	"fmt"
)

// MsgCannotReachServer is the user-facing text of every NetworkError.
const MsgCannotReachServer = "Cannot reach the server. Check your connection and try again."

// Sentinel errors.
var (
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
	ErrEmptyPath      = errors.New("apiclient: empty request path")
	ErrCircuitOpen    = errors.New("apiclient: circuit breaker is open")
)

// NetworkError reports a transport failure: DNS, refused connection,
// timeout or an open circuit breaker.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

// Error returns the generic user-facing message. The cause is not included.
func (e *NetworkError) Error() string { return MsgCannotReachServer }

// Unwrap returns the transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// Detail describes the failure for logs.
func (e *NetworkError) Detail() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

// Error returns the server-supplied or templated message.
func (e *HTTPError) Error() string { return e.Message }

// StatusMessage returns the fallback message for a status without a usable body.
func StatusMessage(status int) string {
	return fmt.Sprintf("API Error: %d", status)
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return err.Error()
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
