package service

import (
	"context"
	"fmt"
	"html"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/rs/zerolog"
)

type noteStore interface {
	CreateNote(ctx context.Context, userID string, payload *note.CreateNotePayload) (*note.Note, error)
	ListNotes(ctx context.Context, userID string, query *note.ListNotesQuery) (*model.PaginatedResponse[note.PopulatedNote], error)
	GetNoteByID(ctx context.Context, userID string, id int64) (*note.PopulatedNote, error)
	DeleteNote(ctx context.Context, userID string, id int64) (int64, error)
}

type notifier interface {
	AddMessage(ctx context.Context, userID, title, content string)
}

type NoteService struct {
	repo     noteStore
	users    userLookup
	notifier notifier
	logger   *zerolog.Logger
}

func NewNoteService(repo noteStore, users userLookup, n notifier, logger *zerolog.Logger) *NoteService {
	return &NoteService{repo: repo, users: users, notifier: n, logger: logger}
}

// Create stores the note and tells its owner about it.
func (s *NoteService) Create(ctx context.Context, userID string, payload *note.CreateNotePayload) (*note.Note, error) {
	n, err := s.repo.CreateNote(ctx, userID, payload)
	if err != nil {
		return nil, err
	}

	author := userID
	if u, err := s.users.GetUser(ctx, userID); err == nil && u.Nickname != "" {
		author = u.Nickname
	}

	content := fmt.Sprintf(`%s created a new note: <b style="color:black;">%s</b>`,
		html.EscapeString(author), html.EscapeString(n.Title))
	s.notifier.AddMessage(ctx, userID, "New note", content)

	logFrom(ctx, s.logger).Info().Int64("note_id", n.ID).Msg("note created")
	return n, nil
}

func (s *NoteService) List(ctx context.Context, userID string, query *note.ListNotesQuery) (*model.PaginatedResponse[note.PopulatedNote], error) {
	return s.repo.ListNotes(ctx, userID, query)
}

func (s *NoteService) Get(ctx context.Context, userID string, id int64) (*note.PopulatedNote, error) {
	return s.repo.GetNoteByID(ctx, userID, id)
}

func (s *NoteService) Delete(ctx context.Context, userID string, id int64) (*model.AffectedResult, error) {
	affected, err := s.repo.DeleteNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &model.AffectedResult{Affected: affected}, nil
}
