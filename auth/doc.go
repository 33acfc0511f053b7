// Package auth supplies the bearer token the API client sends.
//
// A TokenSource plays the role of the browser's local storage: it may be a
// fixed value, an environment variable, a file written by "hagel login", or
// a chain of those. Inspect reads the claims of a JWT without verifying its
// signature so callers can warn about expired sessions before the server
// rejects them.
package auth
