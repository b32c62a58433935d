package handler

import (
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/labstack/echo/v4"
)

type NoteHandler struct {
	Handler
	notes *service.NoteService
}

func NewNoteHandler(s *server.Server, notes *service.NoteService) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandler(s),
		notes:   notes,
	}
}

func (h *NoteHandler) Create(c echo.Context, payload *note.CreateNotePayload) (*note.Note, error) {
	return h.notes.Create(c.Request().Context(), middleware.GetUserID(c), payload)
}

func (h *NoteHandler) List(c echo.Context, query *note.ListNotesQuery) (*model.PaginatedResponse[note.PopulatedNote], error) {
	return h.notes.List(c.Request().Context(), middleware.GetUserID(c), query)
}

func (h *NoteHandler) Get(c echo.Context, params *note.GetNoteParams) (*note.PopulatedNote, error) {
	return h.notes.Get(c.Request().Context(), middleware.GetUserID(c), params.ID)
}

func (h *NoteHandler) Delete(c echo.Context, params *note.DeleteNoteParams) (*model.AffectedResult, error) {
	return h.notes.Delete(c.Request().Context(), middleware.GetUserID(c), params.ID)
}
