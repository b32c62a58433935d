package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/go-productivity/internal/server"
)

// TracingMiddleware owns the New Relic middleware.
//
// It has two layers:
//  1. NewRelicMiddleware() starts a transaction per request.
//  2. EnhanceTracing() adds request attributes and reports server errors.
//
// With a nil application (no license key) both layers pass requests through
// untouched.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the nrecho middleware, which makes
// newrelic.FromContext work for handlers, services and pgx/redis hooks.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing decorates the transaction started by NewRelicMiddleware.
//
// What it adds:
//   - client IP, user agent, request id and route
//   - the authenticated user id, once auth has run further down the chain
//   - the final status and, for HTTPErrors, the domain code (NOTE_NOT_FOUND,
//     FLOW_NOT_EMPTY, ...)
//
// Only server errors are noticed. Validation rejections, missing resources
// and rate limit denials are expected client outcomes and would drown the
// error rate otherwise; they stay visible through the status attributes.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			txn.AddAttribute("http.route", c.Path())
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}

			// The global error handler writes the response after this
			// middleware returns, so status and code come from the error.
			status := c.Response().Status
			if err != nil {
				response := toHTTPError(err)
				status = response.Status
				txn.AddAttribute("error.code", response.Code)
				if noticeable(status) {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				}
			}
			txn.AddAttribute("http.status_code", status)

			return err
		}
	}
}

// noticeable reports whether a failure with status counts as an error in
// New Relic.
func noticeable(status int) bool {
	return status >= http.StatusInternalServerError
}
