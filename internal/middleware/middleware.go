// Package middleware holds the Echo middleware shared by every route.
//
// Global middleware assigns request ids, attaches the request logger and
// maps errors to JSON. Route middleware verifies Clerk session tokens and
// limits the public request proxy per client IP.
package middleware
