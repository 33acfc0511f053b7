// Package observe provides observability primitives for the forum client.
//
// It is a pure instrumentation library: a structured JSON Logger,
// OpenTelemetry providers behind Telemetry, request and cache metrics, and
// a Middleware that instruments HTTP round trips. The CLI wires these into
// apiclient and cache.
package observe
