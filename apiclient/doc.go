// Package apiclient is the authenticated JSON client for the Hagelskott API.
//
// Every request carries JSON content headers and, when the configured
// auth.TokenSource yields one, a bearer token. Failures are normalized into
// two kinds:
//
//   - *NetworkError: the server could not be reached. Error() returns a
//     generic message; the cause is logged and available through Unwrap.
//   - *HTTPError: the server answered with a non-2xx status. The message is
//     taken from the body's "detail" or "message" field, or falls back to
//     "API Error: <status>".
//
// A 2xx response whose body is empty or not valid JSON yields a nil result
// rather than an error.
//
// Each attempt runs under its own timeout. Network failures of idempotent
// requests may be retried, and an optional circuit breaker fails fast while
// the server is down.
package apiclient
