package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-productivity/internal/model/task"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type TaskRepository struct {
	server *server.Server
}

func NewTaskRepository(s *server.Server) *TaskRepository {
	return &TaskRepository{server: s}
}

// CreateTask inserts the task with its sub items and pictures in one
// transaction. The flow must belong to userID.
func (r *TaskRepository) CreateTask(ctx context.Context, userID string, payload *task.CreateTaskPayload) (*task.PopulatedTask, error) {
	var created task.PopulatedTask

	err := inTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var flowID int64
		if err := tx.QueryRow(ctx,
			`SELECT id FROM flows WHERE id = @flow_id AND user_id = @user_id`,
			pgx.NamedArgs{"flow_id": payload.FlowID, "user_id": userID},
		).Scan(&flowID); err != nil {
			return sqlerr.WithTable("flows", err)
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO tasks (flow_id, creator_id, name, description, deadline, sort)
			VALUES (@flow_id, @creator_id, @name, @description, @deadline, @sort)
			RETURNING *
		`, pgx.NamedArgs{
			"flow_id":     payload.FlowID,
			"creator_id":  userID,
			"name":        payload.Name,
			"description": payload.Description,
			"deadline":    payload.Deadline,
			"sort":        payload.Sort,
		})
		if err != nil {
			return fmt.Errorf("failed to execute create task query for flow_id=%d: %w", payload.FlowID, err)
		}
		t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.Task])
		if err != nil {
			return fmt.Errorf("failed to collect row from table:tasks: %w", err)
		}
		created.Task = t

		batch := &pgx.Batch{}
		for i, content := range payload.SubItems {
			batch.Queue(
				`INSERT INTO task_sub_items (task_id, content, sort) VALUES (@task_id, @content, @sort) RETURNING *`,
				pgx.NamedArgs{"task_id": t.ID, "content": content, "sort": i},
			).Query(func(rows pgx.Rows) error {
				item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.SubItem])
				if err != nil {
					return err
				}
				created.SubItems = append(created.SubItems, item)
				return nil
			})
		}
		for _, url := range payload.Pictures {
			batch.Queue(
				`INSERT INTO task_pictures (task_id, url) VALUES (@task_id, @url) RETURNING *`,
				pgx.NamedArgs{"task_id": t.ID, "url": url},
			).Query(func(rows pgx.Rows) error {
				pic, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.Picture])
				if err != nil {
					return err
				}
				created.Pictures = append(created.Pictures, pic)
				return nil
			})
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("failed to insert sub items of task id=%d: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created.SubItems = nonNil(created.SubItems)
	created.Pictures = nonNil(created.Pictures)
	return &created, nil
}

// UpdateTask changes the non-nil fields of payload on a task the user created.
func (r *TaskRepository) UpdateTask(ctx context.Context, userID string, payload *task.UpdateTaskPayload) (*task.Task, error) {
	stmt := `
		UPDATE tasks SET
			name = COALESCE(@name, name),
			description = COALESCE(@description, description),
			deadline = COALESCE(@deadline, deadline),
			sort = COALESCE(@sort, sort),
			complete = COALESCE(@complete, complete),
			updated_at = NOW()
		WHERE id = @id AND creator_id = @user_id
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"id":          payload.ID,
		"user_id":     userID,
		"name":        payload.Name,
		"description": payload.Description,
		"deadline":    payload.Deadline,
		"sort":        payload.Sort,
		"complete":    payload.Complete,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute update task query for id=%d: %w", payload.ID, err)
	}

	t, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[task.Task])
	if err != nil {
		return nil, sqlerr.WithTable("tasks", err)
	}
	return &t, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, userID string, id int64) (int64, error) {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = @id AND creator_id = @user_id`,
		pgx.NamedArgs{"id": id, "user_id": userID},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute delete task query for id=%d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, sqlerr.WithTable("tasks", pgx.ErrNoRows)
	}
	return tag.RowsAffected(), nil
}

// TasksByFlows loads the tasks of flowIDs ordered by sort. A non-empty
// keywords keeps only tasks whose name contains it.
func (r *TaskRepository) TasksByFlows(ctx context.Context, flowIDs []int64, keywords string) ([]task.Task, error) {
	if len(flowIDs) == 0 {
		return nil, nil
	}

	stmt := `
		SELECT * FROM tasks
		WHERE flow_id = ANY(@flow_ids)
			AND (@keywords = '' OR STRPOS(name, @keywords) > 0)
		ORDER BY sort ASC, id ASC
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"flow_ids": flowIDs, "keywords": keywords})
	if err != nil {
		return nil, fmt.Errorf("failed to execute tasks by flows query: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[task.Task])
}

func (r *TaskRepository) SubItemsByTasks(ctx context.Context, taskIDs []int64) ([]task.SubItem, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT * FROM task_sub_items WHERE task_id = ANY(@task_ids) ORDER BY sort ASC, id ASC`,
		pgx.NamedArgs{"task_ids": taskIDs},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sub items query: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[task.SubItem])
}

func (r *TaskRepository) PicturesByTasks(ctx context.Context, taskIDs []int64) ([]task.Picture, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT * FROM task_pictures WHERE task_id = ANY(@task_ids) ORDER BY id ASC`,
		pgx.NamedArgs{"task_ids": taskIDs},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute pictures query: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[task.Picture])
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
