package note

import (
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/validation"
)

// ------------------------------------------------------------

type CreateNotePayload struct {
	Title    string `json:"title"`
	Cover    string `json:"cover"`
	Overview string `json:"overview"`
	Content  string `json:"content"`
	TaskID   *int64 `json:"task_id"`
}

var createNoteShape = validation.NewShape("CreateNote",
	validation.Rule{Field: "title", Tag: "required,is_string", Message: "title must not be empty"},
	validation.Rule{Field: "title", Tag: "max=100", Message: "title must not exceed 100 characters"},
	validation.Rule{Field: "cover", Tag: "omitempty,is_string,url", Message: "cover must be a valid URL"},
	validation.Rule{Field: "overview", Tag: "omitempty,is_string,max=500", Message: "overview must not exceed 500 characters"},
	validation.Rule{Field: "content", Tag: "required,is_string", Message: "content must not be empty"},
	validation.Rule{Field: "task_id", Tag: "omitempty,num_min=1", Message: "task_id must be a positive number"},
)

func (CreateNotePayload) Shape() *validation.Shape { return createNoteShape }

// ------------------------------------------------------------

type ListNotesQuery struct {
	model.Pagination
	Keywords string `json:"keywords"`
}

var listNotesShape = validation.NewShape("ListNotes",
	append([]validation.Rule{
		{Field: "keywords", Tag: "omitempty,is_string,max=100", Message: "keywords must not exceed 100 characters"},
	}, model.PaginationRules...)...,
)

func (ListNotesQuery) Shape() *validation.Shape { return listNotesShape }

// ------------------------------------------------------------

type GetNoteParams struct {
	ID int64 `json:"id"`
}

var noteIDShape = validation.NewShape("NoteID", model.IDRule("note"))

func (GetNoteParams) Shape() *validation.Shape { return noteIDShape }

// ------------------------------------------------------------

type DeleteNoteParams struct {
	ID int64 `json:"id"`
}

func (DeleteNoteParams) Shape() *validation.Shape { return noteIDShape }
