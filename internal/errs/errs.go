// Package errs defines the error types returned to API clients.
//
// Every failure that reaches the global error handler is rendered as an
// HTTPError: a status, a machine readable code such as NOTE_NOT_FOUND or
// FLOW_NOT_EMPTY, and a message. Validation rejections always use the
// "Validation failed: " prefix.
package errs
