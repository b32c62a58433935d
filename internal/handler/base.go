package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Envelope values of every successful response.
const (
	SuccessMessage = "Operation successful"
	SuccessCode    = 10000
)

// Response wraps every successful result.
type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler is embedded by the concrete handlers for access to the shared
// server resources, the validation pipeline in particular.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives the validated payload and
// returns the value placed in the response envelope.
type HandlerFunc[Req any, Res any] func(c echo.Context, req *Req) (Res, error)

// payload is satisfied by *Req when Req declares its validation shape.
type payload[Req any] interface {
	*Req
	validation.Validatable
}

// Handle wraps a typed endpoint with binding, validation, logging, tracing
// and the response envelope. A fresh payload is allocated per request.
//
//	notes.POST("", handler.Handle(h.Note.Handler, h.Note.Create, http.StatusCreated))
func Handle[Req any, Res any, P payload[Req]](h Handler, handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(Req)
		return h.handleRequest(c, P(req), func(c echo.Context) (any, error) {
			return handler(c, req)
		}, status)
	}
}

// handleRequest runs validation and the endpoint, records timings on the
// request logger and the New Relic transaction, then writes the envelope.
// Errors are returned untouched for the global error handler.
func (h Handler) handleRequest(c echo.Context, req validation.Validatable, run func(c echo.Context) (any, error), status int) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, h.server.Pipeline, req); err != nil {
		validationDuration := time.Since(validationStart)

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := run(c)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	if status == http.StatusNoContent {
		return c.NoContent(status)
	}
	return c.JSON(status, Response{Data: result, Message: SuccessMessage, Code: SuccessCode})
}
