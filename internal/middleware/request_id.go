package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the correlation id in both directions. The
	// frontend reads it from failed responses and shows it in error reports.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is where the id is stored in the Echo context.
	RequestIDKey = "request_id"
)

// maxRequestIDLength bounds ids accepted from callers.
const maxRequestIDLength = 64

// RequestID makes sure every request has a correlation id.
//
// Behavior:
//   - An incoming X-Request-ID is reused when it is a short token of
//     letters, digits and "-_.:" only.
//   - Anything else, including a missing header, is replaced by a new UUID,
//     so caller input never reaches the logs unchecked.
//   - The id is written back to the request header, for plain net/http
//     handlers such as the Clerk failure handler, stored in the Echo context
//     and set on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.New().String()
			}

			req.Header.Set(RequestIDHeader, requestID)
			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request id from the Echo context.
//
// Returns an empty string when RequestID did not run.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
