package handler

import (
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/flow"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/labstack/echo/v4"
)

type FlowHandler struct {
	Handler
	flows *service.FlowService
}

func NewFlowHandler(s *server.Server, flows *service.FlowService) *FlowHandler {
	return &FlowHandler{
		Handler: NewHandler(s),
		flows:   flows,
	}
}

// List returns the flows with nested tasks, filtered by ?keywords=.
func (h *FlowHandler) List(c echo.Context, query *flow.ListFlowsQuery) ([]flow.PopulatedFlow, error) {
	return h.flows.List(c.Request().Context(), middleware.GetUserID(c), query)
}

func (h *FlowHandler) All(c echo.Context, _ *model.Empty) ([]flow.Flow, error) {
	return h.flows.All(c.Request().Context(), middleware.GetUserID(c))
}

func (h *FlowHandler) Get(c echo.Context, params *flow.GetFlowParams) (*flow.PopulatedFlow, error) {
	return h.flows.Get(c.Request().Context(), middleware.GetUserID(c), params.ID)
}

func (h *FlowHandler) Create(c echo.Context, payload *flow.CreateFlowPayload) (*flow.Flow, error) {
	return h.flows.Create(c.Request().Context(), middleware.GetUserID(c), payload)
}

func (h *FlowHandler) Update(c echo.Context, payload *flow.UpdateFlowPayload) (*flow.PopulatedFlow, error) {
	return h.flows.Update(c.Request().Context(), middleware.GetUserID(c), payload)
}

func (h *FlowHandler) Delete(c echo.Context, params *flow.DeleteFlowParams) (*model.AffectedResult, error) {
	return h.flows.Delete(c.Request().Context(), middleware.GetUserID(c), params.ID)
}
