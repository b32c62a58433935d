package flow

import (
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/validation"
)

// ------------------------------------------------------------

type ListFlowsQuery struct {
	Keywords string `json:"keywords"`
}

var listFlowsShape = validation.NewShape("ListFlows",
	validation.Rule{Field: "keywords", Tag: "omitempty,is_string,max=100", Message: "keywords must not exceed 100 characters"},
)

func (ListFlowsQuery) Shape() *validation.Shape { return listFlowsShape }

// ------------------------------------------------------------

type CreateFlowPayload struct {
	Name     string `json:"name"`
	Sort     int    `json:"sort"`
	Range    string `json:"range"`
	Complete bool   `json:"complete"`
}

var createFlowShape = validation.NewShape("CreateFlow",
	validation.Rule{Field: "name", Tag: "required,is_string", Message: "name must not be empty"},
	validation.Rule{Field: "name", Tag: "max=50", Message: "name must not exceed 50 characters"},
	model.SortRule,
	validation.Rule{Field: "range", Tag: "omitempty,is_string,max=100", Message: "range must not exceed 100 characters"},
	validation.Rule{Field: "complete", Tag: "omitempty,boolean", Message: "complete must be a boolean"},
)

func (CreateFlowPayload) Shape() *validation.Shape { return createFlowShape }

// ------------------------------------------------------------

// UpdateFlowPayload leaves nil fields untouched.
type UpdateFlowPayload struct {
	ID       int64   `json:"id"`
	Name     *string `json:"name"`
	Sort     *int    `json:"sort"`
	Range    *string `json:"range"`
	CanNew   *bool   `json:"can_new"`
	Complete *bool   `json:"complete"`
}

var updateFlowShape = validation.NewShape("UpdateFlow",
	model.IDRule("flow"),
	validation.Rule{Field: "name", Tag: "omitempty,is_string,max=50", Message: "name must not exceed 50 characters"},
	model.SortRule,
	validation.Rule{Field: "range", Tag: "omitempty,is_string,max=100", Message: "range must not exceed 100 characters"},
	validation.Rule{Field: "can_new", Tag: "omitempty,boolean", Message: "can_new must be a boolean"},
	validation.Rule{Field: "complete", Tag: "omitempty,boolean", Message: "complete must be a boolean"},
)

func (UpdateFlowPayload) Shape() *validation.Shape { return updateFlowShape }

// ------------------------------------------------------------

type GetFlowParams struct {
	ID int64 `json:"id"`
}

var flowIDShape = validation.NewShape("FlowID", model.IDRule("flow"))

func (GetFlowParams) Shape() *validation.Shape { return flowIDShape }

type DeleteFlowParams struct {
	ID int64 `json:"id"`
}

func (DeleteFlowParams) Shape() *validation.Shape { return flowIDShape }
