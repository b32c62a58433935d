package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type NoteRepository struct {
	server *server.Server
}

func NewNoteRepository(s *server.Server) *NoteRepository {
	return &NoteRepository{server: s}
}

const populatedNoteColumns = `
	n.*,
	u.nickname AS owner_nickname,
	u.avatar AS owner_avatar
`

func (r *NoteRepository) CreateNote(ctx context.Context, userID string, payload *note.CreateNotePayload) (*note.Note, error) {
	stmt := `
		INSERT INTO notes (owner_id, task_id, title, cover, overview, content)
		VALUES (@owner_id, @task_id, @title, @cover, @overview, @content)
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"owner_id": userID,
		"task_id":  payload.TaskID,
		"title":    payload.Title,
		"cover":    payload.Cover,
		"overview": payload.Overview,
		"content":  payload.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create note query for user_id=%s: %w", userID, err)
	}

	n, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[note.Note])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:notes for user_id=%s: %w", userID, err)
	}
	return &n, nil
}

// ListNotes pages through the user's notes, newest first. Keywords match the
// title or the overview; total counts every match, not just the page.
func (r *NoteRepository) ListNotes(ctx context.Context, userID string, query *note.ListNotesQuery) (*model.PaginatedResponse[note.PopulatedNote], error) {
	query.Normalize()

	args := pgx.NamedArgs{
		"owner_id": userID,
		"keywords": containsPattern(query.Keywords),
		"limit":    query.Size,
		"offset":   query.Offset(),
	}
	filter := `n.owner_id = @owner_id AND (n.title ILIKE @keywords ESCAPE '\' OR n.overview ILIKE @keywords ESCAPE '\')`

	stmt := `
		SELECT` + populatedNoteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.owner_id
		WHERE ` + filter + `
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT @limit OFFSET @offset
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list notes query for user_id=%s: %w", userID, err)
	}
	notes, err := pgx.CollectRows(rows, pgx.RowToStructByName[note.PopulatedNote])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:notes for user_id=%s: %w", userID, err)
	}

	var total int64
	countStmt := `SELECT COUNT(*) FROM notes n WHERE ` + filter
	if err := r.server.DB.Pool.QueryRow(ctx, countStmt, args).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count notes for user_id=%s: %w", userID, err)
	}

	return &model.PaginatedResponse[note.PopulatedNote]{
		List:  notes,
		Total: total,
		Page:  query.Page,
		Size:  query.Size,
	}, nil
}

func (r *NoteRepository) GetNoteByID(ctx context.Context, userID string, id int64) (*note.PopulatedNote, error) {
	stmt := `
		SELECT` + populatedNoteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.owner_id
		WHERE n.id = @id AND n.owner_id = @owner_id
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id, "owner_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get note query for id=%d: %w", id, err)
	}

	n, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[note.PopulatedNote])
	if err != nil {
		return nil, sqlerr.WithTable("notes", err)
	}
	return &n, nil
}

// NotesByTasks returns the notes linked to any of taskIDs.
func (r *NoteRepository) NotesByTasks(ctx context.Context, taskIDs []int64) ([]note.Note, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	stmt := `SELECT * FROM notes WHERE task_id = ANY(@task_ids) ORDER BY created_at DESC`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"task_ids": taskIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to execute notes by tasks query: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[note.Note])
}

func (r *NoteRepository) DeleteNote(ctx context.Context, userID string, id int64) (int64, error) {
	stmt := `DELETE FROM notes WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"id": id, "owner_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete note query for id=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, sqlerr.WithTable("notes", pgx.ErrNoRows)
	}
	return tag.RowsAffected(), nil
}
