package flow

import (
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/task"
)

// Flow is an ordered group of tasks, e.g. a kanban column.
type Flow struct {
	model.Base
	UserID   string `json:"user_id" db:"user_id"`
	Name     string `json:"name" db:"name"`
	Sort     int    `json:"sort" db:"sort"`
	Range    string `json:"range" db:"time_range"`
	CanNew   bool   `json:"can_new" db:"can_new"`
	Complete bool   `json:"complete" db:"complete"`
}

type PopulatedFlow struct {
	Flow
	Tasks []task.PopulatedTask `json:"tasks" db:"-"`
}
