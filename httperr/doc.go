// Package httperr normalizes server-side errors into HTTP responses.
//
// Normalize maps known error shapes to a status code and a localized
// message:
//
//   - duplicate key (code 11000): 400 "already exists"
//   - validation failure: 400 with the per-field messages joined by ", "
//   - invalid identifier: 400
//   - expired session or token: 401; any other token failure: 401
//   - upload failures and oversized bodies: 400
//   - anything else: 500, or the status of an error with a StatusCode() int method
//
// Middleware applies Normalize to the last error recorded on a gin context.
// Outside production it returns the raw error and its stack instead.
package httperr
