package task

import (
	"time"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/validation"
)

// ------------------------------------------------------------

type CreateTaskPayload struct {
	FlowID      int64      `json:"flow_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Sort        int        `json:"sort"`
	SubItems    []string   `json:"sub_items"`
	Pictures    []string   `json:"pictures"`
}

var createTaskShape = validation.NewShape("CreateTask",
	validation.Rule{Field: "flow_id", Tag: "required,num_min=1", Message: "flow_id must be a positive number"},
	validation.Rule{Field: "name", Tag: "required,is_string", Message: "name must not be empty"},
	validation.Rule{Field: "name", Tag: "max=100", Message: "name must not exceed 100 characters"},
	validation.Rule{Field: "description", Tag: "omitempty,is_string,max=2000", Message: "description must not exceed 2000 characters"},
	validation.Rule{Field: "deadline", Tag: "omitempty,is_string,datetime=2006-01-02T15:04:05Z07:00", Message: "deadline must be an RFC 3339 timestamp"},
	model.SortRule,
	validation.Rule{Field: "sub_items", Tag: "omitempty,is_array,max=50", Message: "sub_items must be a list of at most 50 entries"},
	validation.Rule{Field: "sub_items", Tag: "omitempty,dive,required,is_string,max=100", Message: "each sub item must be a non-empty text of at most 100 characters"},
	validation.Rule{Field: "pictures", Tag: "omitempty,is_array,max=9", Message: "pictures must be a list of at most 9 entries"},
	validation.Rule{Field: "pictures", Tag: "omitempty,dive,required,is_string,url", Message: "each picture must be a valid URL"},
)

func (CreateTaskPayload) Shape() *validation.Shape { return createTaskShape }

// ------------------------------------------------------------

// UpdateTaskPayload leaves nil fields untouched.
type UpdateTaskPayload struct {
	ID          int64      `json:"id"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Sort        *int       `json:"sort"`
	Complete    *bool      `json:"complete"`
}

var updateTaskShape = validation.NewShape("UpdateTask",
	model.IDRule("task"),
	validation.Rule{Field: "name", Tag: "omitempty,is_string,max=100", Message: "name must not exceed 100 characters"},
	validation.Rule{Field: "description", Tag: "omitempty,is_string,max=2000", Message: "description must not exceed 2000 characters"},
	validation.Rule{Field: "deadline", Tag: "omitempty,is_string,datetime=2006-01-02T15:04:05Z07:00", Message: "deadline must be an RFC 3339 timestamp"},
	model.SortRule,
	validation.Rule{Field: "complete", Tag: "omitempty,boolean", Message: "complete must be a boolean"},
)

func (UpdateTaskPayload) Shape() *validation.Shape { return updateTaskShape }

// ------------------------------------------------------------

type DeleteTaskParams struct {
	ID int64 `json:"id"`
}

var taskIDShape = validation.NewShape("TaskID", model.IDRule("task"))

func (DeleteTaskParams) Shape() *validation.Shape { return taskIDShape }
