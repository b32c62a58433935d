// Package lib groups integrations that do not belong to a single layer:
// background jobs (asynq), email delivery (Resend) and the upstream
// providers behind the request proxy.
package lib
