package task

import (
	"time"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
)

type Task struct {
	model.Base
	FlowID      int64      `json:"flow_id" db:"flow_id"`
	CreatorID   string     `json:"creator_id" db:"creator_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Deadline    *time.Time `json:"deadline" db:"deadline"`
	Sort        int        `json:"sort" db:"sort"`
	Complete    bool       `json:"complete" db:"complete"`
}

type SubItem struct {
	ID       int64  `json:"id" db:"id"`
	TaskID   int64  `json:"task_id" db:"task_id"`
	Content  string `json:"content" db:"content"`
	Complete bool   `json:"complete" db:"complete"`
	Sort     int    `json:"sort" db:"sort"`
}

type Picture struct {
	ID     int64  `json:"id" db:"id"`
	TaskID int64  `json:"task_id" db:"task_id"`
	URL    string `json:"url" db:"url"`
}

// PopulatedTask is a task with its sub items, pictures and linked notes.
type PopulatedTask struct {
	Task
	SubItems []SubItem   `json:"sub_items" db:"-"`
	Pictures []Picture   `json:"pictures" db:"-"`
	Notes    []note.Note `json:"notes" db:"-"`
}
